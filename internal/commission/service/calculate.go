package service

import (
	"github.com/shopspring/decimal"

	"commission-service/internal/commission/model"
)

var hundred = decimal.NewFromInt(100)

// CalcInput: параметры расчёта. Проценты в шкале 0..100, суммы с НДС.
type CalcInput struct {
	SalePrice           decimal.Decimal
	BuyPrice            decimal.Decimal
	CargoPrice          decimal.Decimal
	VatPercent          decimal.Decimal
	CommissionPercent   decimal.Decimal
	ServicePercent      decimal.Decimal
	ExportPercent       decimal.Decimal
	IncludeVatDeduction bool // НДС с удержаний площадки идёт в вычет
}

// CalcResult: все суммы округлены до копеек (2 знака).
type CalcResult struct {
	Payout           decimal.Decimal
	NetProfit        decimal.Decimal
	ProfitMargin     decimal.Decimal
	CommissionAmount decimal.Decimal
	ServiceAmount    decimal.Decimal
	ExportAmount     decimal.Decimal
	CargoDeduction   decimal.Decimal
	SaleVat          decimal.Decimal
	BuyVat           decimal.Decimal
	CommVat          decimal.Decimal
	ServVat          decimal.Decimal
	ExpVat           decimal.Decimal
	InputVat         decimal.Decimal
	VatPayable       decimal.Decimal
}

// Calculate считает: выплата = продажа - (комиссия + сервис + экспорт + доставка), прибыль = выплата - закупка.
func Calculate(in CalcInput) (CalcResult, error) {
	if !in.SalePrice.IsPositive() {
		return CalcResult{}, model.ErrInvalidSalePrice
	}
	pct := func(p decimal.Decimal) decimal.Decimal { return in.SalePrice.Mul(p).Div(hundred) }

	commission := pct(in.CommissionPercent)
	service := pct(in.ServicePercent)
	export := pct(in.ExportPercent)
	cargo := in.CargoPrice

	payout := in.SalePrice.Sub(commission.Add(service).Add(export).Add(cargo))
	net := payout.Sub(in.BuyPrice)
	margin := net.Div(in.SalePrice).Mul(hundred)

	saleVat := vatShare(in.SalePrice, in.VatPercent)
	buyVat := vatShare(in.BuyPrice, in.VatPercent)
	commVat := vatShare(commission, in.VatPercent)
	servVat := vatShare(service, in.VatPercent)
	expVat := vatShare(export, in.VatPercent)

	input := buyVat
	if in.IncludeVatDeduction {
		input = input.Add(commVat).Add(servVat).Add(expVat)
	}
	payable := decimal.Max(saleVat.Sub(input), decimal.Zero)

	r2 := func(d decimal.Decimal) decimal.Decimal { return d.Round(2) }
	return CalcResult{
		Payout:           r2(payout),
		NetProfit:        r2(net),
		ProfitMargin:     r2(margin),
		CommissionAmount: r2(commission),
		ServiceAmount:    r2(service),
		ExportAmount:     r2(export),
		CargoDeduction:   r2(cargo),
		SaleVat:          r2(saleVat),
		BuyVat:           r2(buyVat),
		CommVat:          r2(commVat),
		ServVat:          r2(servVat),
		ExpVat:           r2(expVat),
		InputVat:         r2(input),
		VatPayable:       r2(payable),
	}, nil
}

// vatShare выделяет НДС из суммы с НДС, 118 при 18% → 18.
func vatShare(gross, vatPercent decimal.Decimal) decimal.Decimal {
	if !vatPercent.IsPositive() {
		return decimal.Zero
	}
	return gross.Mul(vatPercent).Div(hundred.Add(vatPercent))
}
