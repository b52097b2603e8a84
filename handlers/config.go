package handlers

import (
	"os"
	"strconv"
)

// Document number prefixes and the default deposit percentage come from
// the environment (a .env file is loaded at startup) so installations can
// brand their numbering without code changes.
const (
	defaultQuotationPrefix = "SM-QT"
	defaultInvoicePrefix   = "SM-IN"
	defaultDepositPercent  = 30.0
)

func quotationPrefix() string {
	if v := os.Getenv("SOLAR_QUOTATION_PREFIX"); v != "" {
		return v
	}
	return defaultQuotationPrefix
}

func invoicePrefix() string {
	if v := os.Getenv("SOLAR_INVOICE_PREFIX"); v != "" {
		return v
	}
	return defaultInvoicePrefix
}

func depositPercent() float64 {
	if v := os.Getenv("SOLAR_DEFAULT_DEPOSIT_PERCENT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultDepositPercent
}
