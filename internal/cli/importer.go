package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/eshaffer321/orderrecon/internal/infrastructure/storage"
)

// OrderSaver persists one order record.
type OrderSaver interface {
	SaveOrder(ctx context.Context, order *storage.OrderRecord) error
}

// ImportOrders reads order records from r and saves each one. The input is
// either a JSON array of records or a stream of records (one per line).
func ImportOrders(ctx context.Context, saver OrderSaver, r io.Reader, logger *slog.Logger) (int, error) {
	br := bufio.NewReader(r)
	dec := json.NewDecoder(br)

	first, err := peekNonSpace(br)
	if err == io.EOF {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if first == '[' {
		if _, err := dec.Token(); err != nil {
			return 0, fmt.Errorf("read array start: %w", err)
		}
	}

	imported := 0
	for dec.More() {
		var rec storage.OrderRecord
		if err := dec.Decode(&rec); err != nil {
			return imported, fmt.Errorf("decode order %d: %w", imported+1, err)
		}
		if err := saver.SaveOrder(ctx, &rec); err != nil {
			return imported, err
		}
		imported++
		if logger != nil {
			logger.Debug("imported order", slog.String("order_id", rec.ID), slog.String("state", rec.State))
		}
	}
	return imported, nil
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return b, br.UnreadByte()
	}
}
