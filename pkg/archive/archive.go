// Package archive keeps a local copy of every completed receipt. The server
// owns bill truth; this store exists so the counter can reprint the last
// receipt and build reports while offline.
package archive

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/dukaanlabs/dukaan/pkg/billing"
)

// Record is one archived receipt. The full receipt is stored as JSON; the
// indexed columns exist for listing and report queries.
type Record struct {
	ID          uint      `gorm:"primaryKey"`
	BillID      string    `gorm:"uniqueIndex;size:64"`
	GrandTotal  float64   `gorm:""`
	PaymentMode string    `gorm:"size:16"`
	ItemCount   int       `gorm:""`
	CompletedAt time.Time `gorm:"index"`
	Payload     string    `gorm:"type:text"`
	CreatedAt   time.Time
}

// Store persists receipts.
type Store struct {
	db *gorm.DB
}

// New migrates the schema and returns a Store.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("archive: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Save archives a completed receipt. Saving the same bill twice keeps the
// first copy.
func (s *Store) Save(r *billing.Receipt) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("archive: encode receipt: %w", err)
	}

	count := 0
	for _, it := range r.Items {
		count += it.Quantity
	}
	rec := Record{
		BillID:      r.BillID,
		GrandTotal:  r.GrandTotal,
		PaymentMode: r.PaymentMode,
		ItemCount:   count,
		CompletedAt: r.CompletedAt,
		Payload:     string(payload),
	}

	var existing Record
	err = s.db.Where("bill_id = ?", r.BillID).First(&existing).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return fmt.Errorf("archive: lookup: %w", err)
	}

	if err := s.db.Create(&rec).Error; err != nil {
		return fmt.Errorf("archive: save: %w", err)
	}
	return nil
}

// Last returns the most recently completed receipt, decoded.
func (s *Store) Last() (*billing.Receipt, error) {
	var rec Record
	if err := s.db.Order("completed_at DESC").First(&rec).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("archive: no receipts yet")
		}
		return nil, fmt.Errorf("archive: load: %w", err)
	}
	return decode(&rec)
}

// Recent lists up to limit receipts, newest first.
func (s *Store) Recent(limit int) ([]*billing.Receipt, error) {
	var recs []Record
	if err := s.db.Order("completed_at DESC").Limit(limit).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("archive: list: %w", err)
	}
	out := make([]*billing.Receipt, 0, len(recs))
	for i := range recs {
		r, err := decode(&recs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Between lists receipts completed in [from, to), oldest first, for report
// building.
func (s *Store) Between(from, to time.Time) ([]*billing.Receipt, error) {
	var recs []Record
	err := s.db.
		Where("completed_at >= ? AND completed_at < ?", from, to).
		Order("completed_at ASC").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("archive: range: %w", err)
	}
	out := make([]*billing.Receipt, 0, len(recs))
	for i := range recs {
		r, err := decode(&recs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func decode(rec *Record) (*billing.Receipt, error) {
	var r billing.Receipt
	if err := json.Unmarshal([]byte(rec.Payload), &r); err != nil {
		return nil, fmt.Errorf("archive: decode bill %s: %w", rec.BillID, err)
	}
	return &r, nil
}
