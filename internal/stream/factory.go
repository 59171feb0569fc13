package stream

import "time"

// NewBus builds the EventBus for busType against addr with the
// defaults every service shares: a 5s connect timeout and a
// moderate consumer poll window. blockMs tunes the consumer-group
// blocking read duration (STREAM_BLOCK_MS).
func NewBus(busType, addr string, blockMs int) (EventBus, error) {
	cfg := BusConfig{
		Brokers:        []string{addr},
		ConnectTimeout: 5 * time.Second,
		ConsumerConfig: ConsumerConfig{
			FetchMaxWaitMS: blockMs,
			MaxPollRecords: 100,
		},
	}
	return NewEventBus(BusType(busType), cfg)
}
