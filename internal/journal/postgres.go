package journal

import (
	"context"
	"time"

	"github.com/yanun0323/errors"

	"tradesim/pkg/conn"
)

// fillRow is the persisted shape of an Entry.
type fillRow struct {
	ID        uint   `gorm:"primaryKey"`
	EngineID  string `gorm:"index"`
	Asset     string `gorm:"index"`
	Base      string
	Action    string
	Size      int
	Price     float64
	FilledAt  time.Time
	CreatedAt time.Time
}

func (fillRow) TableName() string {
	return "fills"
}

// Postgres records entries into a fills table.
type Postgres struct {
	client *conn.Client
}

// NewPostgres connects and migrates the fills table.
func NewPostgres(option conn.Option) (*Postgres, error) {
	client, err := conn.New(option)
	if err != nil {
		return nil, errors.Wrap(err, "connect postgres")
	}
	if err := client.DB().AutoMigrate(&fillRow{}); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "migrate fills table")
	}
	return &Postgres{client: client}, nil
}

func (p *Postgres) Record(ctx context.Context, entry Entry) error {
	row := fillRow{
		EngineID: entry.EngineID,
		Asset:    entry.Asset,
		Base:     entry.Base,
		Action:   entry.Action.String(),
		Size:     entry.Size,
		Price:    entry.Price,
		FilledAt: entry.FilledAt,
	}
	if err := p.client.DB().WithContext(ctx).Create(&row).Error; err != nil {
		return errors.Wrap(err, "insert fill row")
	}
	return nil
}

func (p *Postgres) Close() error {
	return p.client.Close()
}

var _ Recorder = (*Postgres)(nil)
