package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/thep200/oss-finder/pkg/db"
)

// StateEntry is the gorm row behind the mysql backend.
type StateEntry struct {
	Namespace string    `gorm:"column:namespace;type:varchar(191);primaryKey"`
	Key       string    `gorm:"column:key;type:varchar(191);primaryKey"`
	Value     []byte    `gorm:"column:value;type:mediumblob;not null"`
	Revision  int64     `gorm:"column:revision;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (StateEntry) TableName() string {
	return "state_entries"
}

type Mysql struct {
	mysql *db.Mysql
}

func NewMysql(mysql *db.Mysql) (*Mysql, error) {
	if err := mysql.Migrate(&StateEntry{}); err != nil {
		return nil, fmt.Errorf("migrate state_entries: %w", err)
	}
	return &Mysql{mysql: mysql}, nil
}

func (m *Mysql) Get(ctx context.Context, namespace, key string) (Entry, error) {
	gdb, err := m.mysql.Db()
	if err != nil {
		return Entry{}, err
	}

	var row StateEntry
	err = gdb.WithContext(ctx).Where("namespace = ? AND `key` = ?", namespace, key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Entry{}, fmt.Errorf("%s/%s: %w", namespace, key, ErrNotFound)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("get %s/%s: %w", namespace, key, err)
	}
	return Entry{Value: row.Value, Revision: row.Revision, UpdatedAt: row.UpdatedAt}, nil
}

func (m *Mysql) Put(ctx context.Context, namespace, key string, value []byte, expectedRevision int64) (int64, error) {
	gdb, err := m.mysql.Db()
	if err != nil {
		return 0, err
	}

	var next int64
	err = gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row StateEntry
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("namespace = ? AND `key` = ?", namespace, key).First(&row).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := checkRevision(row.Revision, expectedRevision); err != nil {
			next = row.Revision
			return err
		}

		next = row.Revision + 1
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "namespace"}, {Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "revision", "updated_at"}),
		}).Create(&StateEntry{
			Namespace: namespace,
			Key:       key,
			Value:     value,
			Revision:  next,
			UpdatedAt: time.Now(),
		}).Error
	})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			return next, err
		}
		return 0, fmt.Errorf("put %s/%s: %w", namespace, key, err)
	}
	return next, nil
}

func (m *Mysql) Delete(ctx context.Context, namespace, key string) error {
	gdb, err := m.mysql.Db()
	if err != nil {
		return err
	}
	return gdb.WithContext(ctx).Where("namespace = ? AND `key` = ?", namespace, key).Delete(&StateEntry{}).Error
}

func (m *Mysql) Keys(ctx context.Context, namespace string) ([]string, error) {
	gdb, err := m.mysql.Db()
	if err != nil {
		return nil, err
	}
	keys := []string{}
	err = gdb.WithContext(ctx).Model(&StateEntry{}).Where("namespace = ?", namespace).Order("`key`").Pluck("key", &keys).Error
	return keys, err
}

func (m *Mysql) Close() error {
	return m.mysql.Close()
}
