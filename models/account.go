package models

import (
	"errors"
	"time"

	"github.com/volatiletech/null"
	"gorm.io/gorm"

	"github.com/nusabooks/ledger/config"
	"github.com/nusabooks/ledger/types"
)

const accountListCacheKey = "ledger:accounts:all"

// Account is a node of the chart of accounts. Header accounts group child
// accounts and never receive postings themselves. Accounts referenced by
// posted lines are deactivated, never deleted.
type Account struct {
	ID            uint64              `json:"id" gorm:"primaryKey"`
	Code          string              `json:"code" gorm:"uniqueIndex;size:32"`
	Name          string              `json:"name"`
	Type          types.AccountType   `json:"type" gorm:"size:16"`
	NormalBalance types.NormalBalance `json:"normal_balance" gorm:"size:8"`
	IsHeader      bool                `json:"is_header"`
	Cash          bool                `json:"cash"`
	Active        bool                `json:"active"`
	ParentCode    null.String         `json:"parent_code"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

func CreateAccount(code, name string, accountType types.AccountType, normalBalance types.NormalBalance, isHeader, cash bool, parentCode null.String) (*Account, error) {
	if !types.ValidAccountType(accountType) {
		return nil, &types.InvalidTypeError{Field: "type", Value: accountType}
	}
	if !types.ValidNormalBalance(normalBalance) {
		return nil, &types.InvalidTypeError{Field: "normal_balance", Value: normalBalance}
	}

	var count int64
	config.DataBase.Model(&Account{}).Where("code = ?", code).Count(&count)
	if count > 0 {
		return nil, &types.DuplicateCodeError{Code: code}
	}

	if parentCode.Valid {
		if _, err := LookupAccount(parentCode.String); err != nil {
			return nil, err
		}
	}

	account := &Account{
		Code:          code,
		Name:          name,
		Type:          accountType,
		NormalBalance: normalBalance,
		IsHeader:      isHeader,
		Cash:          cash,
		Active:        true,
		ParentCode:    parentCode,
	}

	if err := config.DataBase.Create(account).Error; err != nil {
		return nil, err
	}

	invalidateAccountCache()

	return account, nil
}

// LookupAccount resolves an active account by code.
func LookupAccount(code string) (*Account, error) {
	var account Account

	result := config.DataBase.Where("code = ? AND active = ?", code, true).First(&account)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, &types.AccountNotFoundError{Code: code}
	}
	if result.Error != nil {
		return nil, result.Error
	}

	return &account, nil
}

// LookupAccountAny resolves an account regardless of its active flag.
func LookupAccountAny(code string) (*Account, error) {
	var account Account

	result := config.DataBase.Where("code = ?", code).First(&account)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, &types.AccountNotFoundError{Code: code}
	}
	if result.Error != nil {
		return nil, result.Error
	}

	return &account, nil
}

func DeactivateAccount(code string) (*Account, error) {
	account, err := LookupAccount(code)
	if err != nil {
		return nil, err
	}

	account.Active = false
	if err := config.DataBase.Save(account).Error; err != nil {
		return nil, err
	}

	invalidateAccountCache()

	return account, nil
}

// ListAccounts returns the whole chart, active and inactive, ordered by code.
// The redis copy is a rebuildable index; the database stays the source of
// truth.
func ListAccounts() ([]Account, error) {
	var accounts []Account

	if config.Redis != nil {
		if err := config.Redis.GetKey(accountListCacheKey, &accounts); err == nil {
			return accounts, nil
		}
	}

	if err := config.DataBase.Order("code").Find(&accounts).Error; err != nil {
		return nil, err
	}

	if config.Redis != nil {
		if err := config.Redis.SetKey(accountListCacheKey, accounts, time.Hour); err != nil {
			config.Logger.Warnf("failed to cache chart of accounts: %v", err)
		}
	}

	return accounts, nil
}

func invalidateAccountCache() {
	if config.Redis == nil {
		return
	}

	if err := config.Redis.DeleteKey(accountListCacheKey); err != nil {
		config.Logger.Warnf("failed to invalidate chart of accounts cache: %v", err)
	}
}
