package audit

import (
	"encoding/json"
	"io/ioutil"
	"os"

	"github.com/streadway/amqp"
	yaml "gopkg.in/yaml.v2"
)

type Exchange struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type AMQPConfig struct {
	Exchange struct {
		Audit Exchange `yaml:"audit"`
	}
}

// AMQPPublisher ships audit events to the external log over an AMQP exchange.
type AMQPPublisher struct {
	Config     *AMQPConfig
	Connection *amqp.Connection
	Channel    *amqp.Channel
}

func LoadConfig(path string) (*AMQPConfig, error) {
	buf, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}

	c := &AMQPConfig{}
	if err := yaml.Unmarshal(buf, c); err != nil {
		return nil, err
	}

	return c, nil
}

func Connect(configPath string) (*AMQPPublisher, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	rabbitmq_username := os.Getenv("RABBITMQ_USERNAME")
	rabbitmq_password := os.Getenv("RABBITMQ_PASSWORD")
	rabbitmq_host := os.Getenv("RABBITMQ_HOST")
	rabbitmq_port := os.Getenv("RABBITMQ_PORT")

	connection, err := amqp.Dial("amqp://" + rabbitmq_username + ":" + rabbitmq_password + "@" + rabbitmq_host + ":" + rabbitmq_port)
	if err != nil {
		return nil, err
	}

	channel, err := connection.Channel()
	if err != nil {
		return nil, err
	}

	exchange := cfg.Exchange.Audit
	if err := channel.ExchangeDeclare(exchange.Name, exchange.Type, true, false, false, false, nil); err != nil {
		return nil, err
	}

	return &AMQPPublisher{
		Config:     cfg,
		Connection: connection,
		Channel:    channel,
	}, nil
}

func (p *AMQPPublisher) Publish(event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.Channel.Publish(
		p.Config.Exchange.Audit.Name,
		event.Kind,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	)
}

func (p *AMQPPublisher) Close() error {
	if err := p.Channel.Close(); err != nil {
		return err
	}

	return p.Connection.Close()
}
