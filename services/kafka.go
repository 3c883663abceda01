package services

import (
	"encoding/json"

	"passkey_auth_ms/config"
	"passkey_auth_ms/dtos/request"

	"github.com/IBM/sarama"
	"github.com/gofiber/fiber/v2/log"
)

// SendPasskeyLoginEventToKafka publishes a successful-login event for
// downstream consumers. Callers treat failures as log-only: the
// ceremony already succeeded and must not be rolled back over
// telemetry.
func SendPasskeyLoginEventToKafka(loginEvent *request.PasskeyLoginEvent) error {
	eventData, err := json.Marshal(loginEvent)
	if err != nil {
		return err
	}
	producer, err := sarama.NewSyncProducer(config.Conf.Application.Kafka.Brokers, nil)
	if err != nil {
		log.Error("Failed to create sync producer: ", err)
		return err
	}
	defer producer.Close()

	msg := &sarama.ProducerMessage{
		Topic: config.Conf.Application.Kafka.LoginEventTopic,
		Value: sarama.StringEncoder(eventData),
	}
	partition, offset, err := producer.SendMessage(msg)
	if err != nil {
		log.Error("Failed to send login event: ", err)
		return err
	}
	log.Infof("Login event sent to partition %d at offset %d", partition, offset)
	return nil
}
