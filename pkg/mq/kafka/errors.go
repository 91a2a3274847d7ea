package kafka

import "errors"

var (
	ErrNoBrokers = errors.New("kafka: no brokers configured")
	ErrProducer  = errors.New("kafka: create producer")
	ErrEncode    = errors.New("kafka: encode item")
	ErrSend      = errors.New("kafka: send batch")
)
