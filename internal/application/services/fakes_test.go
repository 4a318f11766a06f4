package services

import (
	"context"
	"mime/multipart"
	"net/textproto"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rabbitmq/amqp091-go"

	"filevault-api/config"
	"filevault-api/internal/infrastructure/mq"
	"filevault-api/internal/infrastructure/policy"
)

// FakeRabbit satisfies ports.RabbitMQ with a buffered input channel so
// services can publish without a broker.
type FakeRabbit struct {
	in chan mq.Event
}

func NewFakeRabbit() *FakeRabbit {
	return &FakeRabbit{in: make(chan mq.Event, 64)}
}

func (f *FakeRabbit) Connect(context.Context, string) error { return nil }
func (f *FakeRabbit) Init() error                           { return nil }
func (f *FakeRabbit) PublisherWorker(context.Context)       {}
func (f *FakeRabbit) GetInputChan() chan mq.Event           { return f.in }
func (f *FakeRabbit) GetConn() *amqp091.Connection          { return nil }

func (f *FakeRabbit) drain() []mq.Event {
	var out []mq.Event
	for {
		select {
		case e := <-f.in:
			out = append(out, e)
		default:
			return out
		}
	}
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func testCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "filevault_test", Name: "general_counters"},
		[]string{"result"},
	)
}

func testPolicy() *policy.Store {
	return policy.New(config.Policy{
		MaxFileSizeMB:       50,
		MinValidityHours:    1,
		MaxValidityDays:     30,
		DefaultValidityDays: 7,
		MinPasswordLength:   6,
	})
}

type fakeContent struct{}

func (fakeContent) GetPublicURL(key string) string { return "https://cdn.example/" + key }
func (fakeContent) GetBucket() string              { return "filevault-test" }

func multipartHeader(name, contentType string, size int64) *multipart.FileHeader {
	return &multipart.FileHeader{
		Filename: name,
		Size:     size,
		Header:   textproto.MIMEHeader{"Content-Type": []string{contentType}},
	}
}
