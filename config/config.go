package config

var Conf Config

type Config struct {
	Application Application `yaml:"application" json:"application"`
}

type Application struct {
	DisplayName string     `yaml:"display-name" json:"display_name"`
	Server      Server     `yaml:"server" json:"server"`
	Datasource  Datasource `yaml:"datasource" json:"datasource"`
	Migration   string     `yaml:"migration"`
	Security    Security   `yaml:"security" json:"security"`
	Redis       Redis      `yaml:"redis" json:"redis"`
	Kafka       Kafka      `yaml:"kafka" json:"kafka"`
	WebAuthn    WebAuthn   `yaml:"webauthn" json:"webauthn"`
}

type Server struct {
	ContextPath string `yaml:"context-path" json:"context_path"`
	ApiVersion  string `yaml:"api-version" json:"api_version"`
	Port        string `yaml:"port"`
}

type Datasource struct {
	PrimaryURL            string `yaml:"primary-url" json:"primary_url"`
	MaxIdleConnections    int    `yaml:"max-idle-connections" json:"max_idle_connections"`
	MaxOpenConnections    int    `yaml:"max-open-connections" json:"max_open_connections"`
	ConnectionMaxLifetime int    `yaml:"connection-max-lifetime" json:"connection_max_lifetime"`
}

type Security struct {
	Secret                              string `yaml:"secret" json:"-"`
	Issuer                              string `yaml:"issuer" json:"issuer"`
	TokenValidityInSeconds              int    `yaml:"token-validity-in-seconds" json:"token_validity_in_seconds"`
	TokenValidityInSecondsForRememberMe int    `yaml:"token-validity-in-seconds-for-remember-me" json:"token_validity_in_seconds_for_remember_me"`
	SessionValidityInSeconds            int    `yaml:"session-validity-in-seconds" json:"session_validity_in_seconds"`
}

type Redis struct {
	Host string `yaml:"address" json:"address"`
}

type Kafka struct {
	Brokers         []string `yaml:"brokers" json:"brokers"`
	LoginEventTopic string   `yaml:"login-event-topic" json:"login_event_topic"`
}

type WebAuthn struct {
	RpDisplayName              string `yaml:"rp-display-name" json:"rp_display_name"`
	RpID                       string `yaml:"rp-id" json:"rp_id"`
	RpOrigin                   string `yaml:"rp-origin" json:"rp_origin"`
	RpTopOrigin                string `yaml:"rp-top-origin" json:"rp_top_origin"`
	UserVerification           string `yaml:"user-verification" json:"user_verification"`
	ChallengeValidityInSeconds int    `yaml:"challenge-validity-in-seconds" json:"challenge_validity_in_seconds"`
}
