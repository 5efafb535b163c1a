package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commission-service/internal/commission/model"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDec(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "%s: want %s, got %s", field, want, got)
}

func TestCalculate(t *testing.T) {
	in := CalcInput{
		SalePrice:           dec("100"),
		BuyPrice:            dec("50"),
		CargoPrice:          dec("10"),
		VatPercent:          dec("20"),
		CommissionPercent:   dec("15"),
		ServicePercent:      dec("2"),
		ExportPercent:       dec("1"),
		IncludeVatDeduction: true,
	}
	res, err := Calculate(in)
	require.NoError(t, err)

	assertDec(t, "15", res.CommissionAmount, "commission")
	assertDec(t, "2", res.ServiceAmount, "service")
	assertDec(t, "1", res.ExportAmount, "export")
	assertDec(t, "10", res.CargoDeduction, "cargo")
	assertDec(t, "72", res.Payout, "payout")
	assertDec(t, "22", res.NetProfit, "net")
	assertDec(t, "22", res.ProfitMargin, "margin")
	assertDec(t, "16.67", res.SaleVat, "saleVat")
	assertDec(t, "8.33", res.BuyVat, "buyVat")
	assertDec(t, "2.5", res.CommVat, "commVat")
	assertDec(t, "0.33", res.ServVat, "servVat")
	assertDec(t, "0.17", res.ExpVat, "expVat")
	assertDec(t, "11.33", res.InputVat, "inputVat")
	assertDec(t, "5.33", res.VatPayable, "vatPayable")

	in.IncludeVatDeduction = false
	res, err = Calculate(in)
	require.NoError(t, err)
	assertDec(t, "8.33", res.InputVat, "inputVat")
	assertDec(t, "8.33", res.VatPayable, "vatPayable")
}

func TestCalculate_NoVatAndNegativeProfit(t *testing.T) {
	res, err := Calculate(CalcInput{
		SalePrice:         dec("80"),
		BuyPrice:          dec("90"),
		CommissionPercent: dec("12.5"),
	})
	require.NoError(t, err)
	assertDec(t, "10", res.CommissionAmount, "commission")
	assertDec(t, "70", res.Payout, "payout")
	assertDec(t, "-20", res.NetProfit, "net")
	assertDec(t, "-25", res.ProfitMargin, "margin")
	assert.True(t, res.SaleVat.IsZero())
	assert.True(t, res.VatPayable.IsZero())
}

func TestCalculate_VatPayableNeverNegative(t *testing.T) {
	res, err := Calculate(CalcInput{
		SalePrice:  dec("100"),
		BuyPrice:   dec("150"),
		VatPercent: dec("20"),
	})
	require.NoError(t, err)
	assert.True(t, res.VatPayable.IsZero())
}

func TestCalculate_InvalidSalePrice(t *testing.T) {
	for _, sale := range []string{"0", "-5"} {
		_, err := Calculate(CalcInput{SalePrice: dec(sale)})
		assert.ErrorIs(t, err, model.ErrInvalidSalePrice)
	}
}
