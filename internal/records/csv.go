// Package records reads ledger rows and writes fee lines.
package records

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"commission/internal/models"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

const fieldCount = 6

// CSVSource parses rows of date,client id,client type,operation,amount,currency.
type CSVSource struct {
	reader *csv.Reader
	line   int
}

func NewCSVSource(r io.Reader) *CSVSource {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	return &CSVSource{reader: reader}
}

// Next returns the next record, or io.EOF when the input is exhausted. Blank
// lines are skipped.
func (s *CSVSource) Next(ctx context.Context) (models.TransactionRecord, error) {
	if err := ctx.Err(); err != nil {
		return models.TransactionRecord{}, err
	}

	fields, err := s.reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return models.TransactionRecord{}, io.EOF
		}
		return models.TransactionRecord{}, fmt.Errorf("%w: %w", ErrMalformedRecord, err)
	}
	s.line, _ = s.reader.FieldPos(0)

	rec, err := ParseRecord(fields)
	if err != nil {
		return models.TransactionRecord{}, fmt.Errorf("line %d: %w", s.line, err)
	}
	return rec, nil
}

// ParseRecord builds a record from the six ledger fields. Unknown client or
// operation types are kept as their Unknown variants.
func ParseRecord(fields []string) (models.TransactionRecord, error) {
	if len(fields) != fieldCount {
		return models.TransactionRecord{}, fmt.Errorf("%w: want %d fields, got %d", ErrMalformedRecord, fieldCount, len(fields))
	}

	date, err := civil.ParseDate(strings.TrimSpace(fields[0]))
	if err != nil {
		return models.TransactionRecord{}, fmt.Errorf("%w: bad date %q", ErrMalformedRecord, fields[0])
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(fields[4]))
	if err != nil {
		return models.TransactionRecord{}, fmt.Errorf("%w: bad amount %q", ErrMalformedRecord, fields[4])
	}
	if amount.IsNegative() {
		return models.TransactionRecord{}, fmt.Errorf("%w: negative amount %s", ErrMalformedRecord, amount)
	}

	currency := strings.ToUpper(strings.TrimSpace(fields[5]))
	if len(currency) != 3 {
		return models.TransactionRecord{}, fmt.Errorf("%w: bad currency %q", ErrMalformedRecord, fields[5])
	}

	return models.TransactionRecord{
		Date:       date,
		ClientID:   strings.TrimSpace(fields[1]),
		ClientType: models.ParseClientType(fields[2]),
		Operation:  models.ParseOperationType(fields[3]),
		Amount:     amount,
		Currency:   currency,
	}, nil
}
