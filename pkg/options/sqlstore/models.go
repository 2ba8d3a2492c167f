package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

type optionRecord struct {
	bun.BaseModel `bun:"table:settings_options,alias:so"`

	Name      string    `bun:"name,pk"`
	Value     string    `bun:"value,notnull"`
	Autoload  bool      `bun:"autoload,notnull"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
