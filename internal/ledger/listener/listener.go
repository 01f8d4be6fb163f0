package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-ledger-service/internal/ledger"
	"github.com/fekuna/omnipos-ledger-service/internal/ledger/dto"
	"github.com/fekuna/omnipos-ledger-service/pkg/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	EventSaleRecorded   = "SaleRecorded"
	EventTruckDelivered = "TruckDelivered"
)

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// LedgerListener feeds sales and deliveries published by other systems
// (point of sale, dispatch) into the ledger.
type LedgerListener struct {
	consumer MessageReader
	uc       ledger.UseCase
	logger   logger.ZapLogger
	backoff  time.Duration
}

func NewLedgerListener(consumer MessageReader, uc ledger.UseCase, logger logger.ZapLogger) *LedgerListener {
	return &LedgerListener{
		consumer: consumer,
		uc:       uc,
		logger:   logger,
		backoff:  time.Second,
	}
}

func (l *LedgerListener) Start(ctx context.Context) {
	l.logger.Info("Starting Ledger Kafka Listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping Ledger Kafka Listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				select {
				case <-ctx.Done():
					return
				case <-time.After(l.backoff):
				}
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

type LedgerEvent struct {
	EventID   string          `json:"event_id"`
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

type SalePayload struct {
	LocationID      int64  `json:"location_id"`
	ItemType        string `json:"item_type"`
	Quantity        int64  `json:"quantity"`
	TransactionDate string `json:"transaction_date"`
}

type TruckPayload struct {
	LocationID      int64   `json:"location_id"`
	TruckType       *string `json:"truck_type"`
	TransactionDate string  `json:"transaction_date"`
}

func (l *LedgerListener) processMessage(ctx context.Context, value []byte) {
	var event LedgerEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}

	switch event.EventType {
	case EventSaleRecorded:
		var p SalePayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			l.logger.Error("Failed to unmarshal sale payload", zap.String("event_id", event.EventID), zap.Error(err))
			return
		}
		_, err := l.uc.Sell(ctx, &dto.SellInput{
			LocationID:      p.LocationID,
			ItemType:        p.ItemType,
			Quantity:        p.Quantity,
			TransactionDate: p.TransactionDate,
		})
		l.done(event, err)

	case EventTruckDelivered:
		var p TruckPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			l.logger.Error("Failed to unmarshal truck payload", zap.String("event_id", event.EventID), zap.Error(err))
			return
		}
		_, err := l.uc.AddFullTruck(ctx, &dto.AddFullTruckInput{
			LocationID:      p.LocationID,
			TruckType:       p.TruckType,
			TransactionDate: p.TransactionDate,
		})
		l.done(event, err)
	}
}

func (l *LedgerListener) done(event LedgerEvent, err error) {
	if err != nil {
		// TODO: park failed events on a dead-letter topic instead of dropping them.
		l.logger.Error("Failed to apply ledger event",
			zap.String("event_id", event.EventID),
			zap.String("event_type", event.EventType),
			zap.Error(err),
		)
		return
	}
	l.logger.Info("Applied ledger event",
		zap.String("event_id", event.EventID),
		zap.String("event_type", event.EventType),
	)
}
