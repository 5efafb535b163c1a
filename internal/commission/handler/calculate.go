package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"commission-service/internal/commission/service"
	"commission-service/internal/middleware"
	"commission-service/internal/utils"
)

// amount принимает число или строку в турецком формате ("1.234,50").
type amount struct {
	decimal.Decimal
	Set bool
}

func (a *amount) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}
	if unq, err := strconv.Unquote(s); err == nil {
		if strings.TrimSpace(unq) == "" {
			return nil
		}
		n, ok := utils.NormalizeAmountTR(unq)
		if !ok {
			return fmt.Errorf("bad amount %q", unq)
		}
		s = n
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("bad amount %s", s)
	}
	a.Decimal, a.Set = d, true
	return nil
}

type calcRequest struct {
	Marketplace         string `json:"marketplace"`
	SalePrice           amount `json:"salePrice"`
	BuyPrice            amount `json:"buyPrice"`
	CargoPrice          amount `json:"cargoPrice"`
	VatPercent          amount `json:"vatPercent"`
	CommissionPercent   amount `json:"commissionPercent"`
	ServicePercent      amount `json:"servicePercent"`
	ExportPercent       amount `json:"exportPercent"`
	IncludeVatDeduction bool   `json:"includeVatDeduction"`
	// без commissionPercent комиссия берётся из каталога по пути
	Category     string `json:"category"`
	SubCategory  string `json:"subCategory"`
	ProductGroup string `json:"productGroup"`
}

type calcResponse struct {
	Marketplace       string  `json:"marketplace"`
	Payout            float64 `json:"payout"`
	NetProfit         float64 `json:"netProfit"`
	ProfitMargin      float64 `json:"profitMargin"`
	NetMargin         float64 `json:"netMargin"`
	DetailedProfitNet float64 `json:"detailedProfitNet"`
	CommissionAmount  float64 `json:"commissionAmount"`
	ServiceAmount     float64 `json:"serviceAmount"`
	ExportAmount      float64 `json:"exportAmount"`
	CargoDeduction    float64 `json:"cargoDeduction"`
	SaleVat           float64 `json:"saleVat"`
	BuyVat            float64 `json:"buyVat"`
	CommVat           float64 `json:"commVat"`
	ServVat           float64 `json:"servVat"`
	ExpVat            float64 `json:"expVat"`
	InputVat          float64 `json:"inputVat"`
	VatPayable        float64 `json:"vatPayable"`
	CommissionPercent float64 `json:"commissionPercent"`
	CommissionSource  string  `json:"commissionSource"` // request | catalog | none
}

// Calculate: POST /api/calculate.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req calcRequest
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "bad json: "+err.Error())
		return
	}
	id := strings.ToLower(strings.TrimSpace(req.Marketplace))
	if id == "" {
		id = h.marketplace(r)
	}

	commission, source := req.CommissionPercent.Decimal, "request"
	if !req.CommissionPercent.Set {
		source = "none"
		if req.ProductGroup != "" {
			snap, err := h.store.Ready(id)
			if err != nil {
				h.fail(w, r, err)
				return
			}
			if v, found := service.FindCommission(snap.Records, req.Category, req.SubCategory, req.ProductGroup); found {
				commission, source = decimal.NewFromFloat(v), "catalog"
			}
		}
	}

	res, err := service.Calculate(service.CalcInput{
		SalePrice:           req.SalePrice.Decimal,
		BuyPrice:            req.BuyPrice.Decimal,
		CargoPrice:          req.CargoPrice.Decimal,
		VatPercent:          req.VatPercent.Decimal,
		CommissionPercent:   commission,
		ServicePercent:      req.ServicePercent.Decimal,
		ExportPercent:       req.ExportPercent.Decimal,
		IncludeVatDeduction: req.IncludeVatDeduction,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	f := func(d decimal.Decimal) float64 { return d.InexactFloat64() }
	log := middleware.RequestLogger(r, h.log)
	log.Debug().
		Str("marketplace", id).
		Str("sale", req.SalePrice.String()).
		Str("commission", commission.String()).
		Str("source", source).
		Msg("calculate")
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data": calcResponse{
			Marketplace:       id,
			Payout:            f(res.Payout),
			NetProfit:         f(res.NetProfit),
			ProfitMargin:      f(res.ProfitMargin),
			NetMargin:         f(res.ProfitMargin),
			DetailedProfitNet: f(res.NetProfit),
			CommissionAmount:  f(res.CommissionAmount),
			ServiceAmount:     f(res.ServiceAmount),
			ExportAmount:      f(res.ExportAmount),
			CargoDeduction:    f(res.CargoDeduction),
			SaleVat:           f(res.SaleVat),
			BuyVat:            f(res.BuyVat),
			CommVat:           f(res.CommVat),
			ServVat:           f(res.ServVat),
			ExpVat:            f(res.ExpVat),
			InputVat:          f(res.InputVat),
			VatPayable:        f(res.VatPayable),
			CommissionPercent: f(commission),
			CommissionSource:  source,
		},
	})
}
