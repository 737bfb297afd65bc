package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/denisbrodbeck/machineid"
	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/robotalks/hostcomm/pkg/fpga/comm"
)

const appID = "hostcomm"

// Batch is the payload of one publication.
type Batch struct {
	Host    string        `json:"host"`
	Time    time.Time     `json:"time"`
	Records []comm.Record `json:"records"`
}

// Publisher publishes record batches under <prefix><host>/records.
type Publisher struct {
	Queue   *Queue
	Host    string
	Timeout time.Duration
}

// HostID returns an app-specific identity of this machine.
func HostID() string {
	id, err := machineid.ProtectedID(appID)
	if err != nil {
		return "unknown"
	}
	return id
}

// NewPublisher connects to the broker at brokerURL.
func NewPublisher(brokerURL string) (*Publisher, error) {
	q, err := NewQueueFromURL(brokerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid MQTT URL: %w", err)
	}
	p := &Publisher{Queue: q, Host: HostID(), Timeout: 5 * time.Second}
	if err = p.wait(q.Connect()); err != nil {
		return nil, fmt.Errorf("MQTT connect: %w", err)
	}
	return p, nil
}

// Topic returns the topic records are published to, without prefix.
func (p *Publisher) Topic() string {
	return p.Host + "/records"
}

// Publish sends a batch of records.
func (p *Publisher) Publish(recs []comm.Record) error {
	payload, err := json.Marshal(Batch{Host: p.Host, Time: time.Now().UTC(), Records: recs})
	if err != nil {
		return err
	}
	return p.wait(p.Queue.PubWith(p.Topic(), payload, 1, false))
}

// Close disconnects from the broker.
func (p *Publisher) Close() error {
	return p.Queue.Close()
}

func (p *Publisher) wait(token paho.Token) error {
	if !token.WaitTimeout(p.Timeout) {
		return fmt.Errorf("timeout after %v", p.Timeout)
	}
	return token.Error()
}
