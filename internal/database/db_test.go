package database

import (
	"errors"
	"testing"

	"pandapos/internal/models"

	"github.com/jinzhu/gorm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Open(Options{Driver: "sqlite3", URL: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, Migrate(db))
	return db
}

func TestSeedFillsEmptyTables(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Seed(db))

	var menu []models.MenuItem
	require.NoError(t, db.Preload("Ingredients").Find(&menu).Error)
	assert.Len(t, menu, len(defaultMenu))

	var orange models.MenuItem
	require.NoError(t, db.Preload("Ingredients").Where("name = ?", "Orange Chicken").First(&orange).Error)
	assert.True(t, orange.Available)
	assert.Len(t, orange.Ingredients, 2)

	var employees []models.Employee
	require.NoError(t, db.Find(&employees).Error)
	require.Len(t, employees, 2)
	assert.NotEqual(t, DefaultManagerPassword, employees[0].PasswordHash)

	var promo models.Promotion
	require.NoError(t, db.Where("code = ?", "PANDA20").First(&promo).Error)
	assert.True(t, promo.Active)
	assert.Equal(t, 3, promo.MinOrders)
}

func TestSeedIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Seed(db))
	require.NoError(t, Seed(db))

	var count int
	db.Model(&models.MenuItem{}).Count(&count)
	assert.Equal(t, len(defaultMenu), count)
	db.Model(&models.InventoryItem{}).Count(&count)
	assert.Equal(t, len(defaultInventory), count)
	db.Model(&models.Employee{}).Count(&count)
	assert.Equal(t, 2, count)
}

func TestWithTransactionRollsBackOnError(t *testing.T) {
	db := openTestDB(t)
	boom := errors.New("boom")

	err := WithTransaction(db, func(tx *gorm.DB) error {
		item := models.InventoryItem{Name: "Soy Sauce", Quantity: 10, Unit: models.UnitFluidOunce}
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var count int
	db.Model(&models.InventoryItem{}).Count(&count)
	assert.Equal(t, 0, count)
}

func TestWithTransactionRollsBackOnPanic(t *testing.T) {
	db := openTestDB(t)

	assert.Panics(t, func() {
		_ = WithTransaction(db, func(tx *gorm.DB) error {
			tx.Create(&models.InventoryItem{Name: "Soy Sauce", Quantity: 10})
			panic("kaboom")
		})
	})

	var count int
	db.Model(&models.InventoryItem{}).Count(&count)
	assert.Equal(t, 0, count)
}

func TestWithTransactionCommits(t *testing.T) {
	db := openTestDB(t)

	err := WithTransaction(db, func(tx *gorm.DB) error {
		return tx.Create(&models.InventoryItem{Name: "Soy Sauce", Quantity: 10}).Error
	})
	require.NoError(t, err)

	var count int
	db.Model(&models.InventoryItem{}).Count(&count)
	assert.Equal(t, 1, count)
}
