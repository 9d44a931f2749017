package domain

import (
	"sort"
	"strings"
)

// CurrencyKind tags a currency as fiat or crypto. Precision and refresh
// scope membership are dispatched on this tag instead of subtyping.
type CurrencyKind int

const (
	Fiat CurrencyKind = iota
	Crypto
)

const (
	kindStringFiat   = "fiat"
	kindStringCrypto = "crypto"
)

// String returns the string representation of the kind.
func (k CurrencyKind) String() string {
	switch k {
	case Fiat:
		return kindStringFiat
	case Crypto:
		return kindStringCrypto
	default:
		return "unknown"
	}
}

// Currency describes one known symbol. Immutable once defined.
type Currency struct {
	Code      string
	Name      string
	Kind      CurrencyKind
	Precision int32

	// IssuingCountry is set for fiat currencies only.
	IssuingCountry string
	// Algorithm and MarketCap are set for crypto currencies only.
	Algorithm string
	MarketCap float64
}

// Display precision per kind: fiat amounts round to cents, crypto amounts
// keep satoshi-level granularity.
const (
	fiatPrecision   int32 = 2
	cryptoPrecision int32 = 8
)

func fiat(name, code, country string) Currency {
	return Currency{Code: code, Name: name, Kind: Fiat, Precision: fiatPrecision, IssuingCountry: country}
}

func crypto(name, code, algorithm string, marketCap float64) Currency {
	return Currency{Code: code, Name: name, Kind: Crypto, Precision: cryptoPrecision, Algorithm: algorithm, MarketCap: marketCap}
}

var catalog = func() map[string]Currency {
	list := []Currency{
		fiat("US Dollar", "USD", "United States"),
		fiat("Euro", "EUR", "Eurozone"),
		fiat("British Pound", "GBP", "United Kingdom"),
		fiat("Japanese Yen", "JPY", "Japan"),
		fiat("Swiss Franc", "CHF", "Switzerland"),
		fiat("Russian Ruble", "RUB", "Russia"),
		fiat("Chinese Yuan", "CNY", "China"),
		fiat("Canadian Dollar", "CAD", "Canada"),
		fiat("Australian Dollar", "AUD", "Australia"),

		crypto("Bitcoin", "BTC", "SHA-256", 1.12e12),
		crypto("Ethereum", "ETH", "Ethash", 4.5e11),
		crypto("Solana", "SOL", "Proof-of-History", 8.0e10),
		crypto("Litecoin", "LTC", "Scrypt", 5.5e9),
		crypto("Ripple", "XRP", "XRP Ledger", 3.2e10),
		crypto("Cardano", "ADA", "Ouroboros", 1.5e10),
		crypto("Polkadot", "DOT", "Nominated Proof-of-Stake", 7.5e9),
	}

	m := make(map[string]Currency, len(list))
	for _, c := range list {
		m[c.Code] = c
	}
	return m
}()

// NormalizeCode trims and uppercases a currency code and validates its shape:
// 2 to 5 alphanumeric characters.
func NormalizeCode(code string) (string, error) {
	clean := strings.ToUpper(strings.TrimSpace(code))
	if clean == "" {
		return "", &InvalidCurrencyCodeError{Code: code, Reason: "code must not be empty"}
	}
	if len(clean) < 2 || len(clean) > 5 {
		return "", &InvalidCurrencyCodeError{Code: code, Reason: "code must be 2 to 5 characters"}
	}
	for _, r := range clean {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return "", &InvalidCurrencyCodeError{Code: code, Reason: "code must contain only letters and digits"}
		}
	}
	return clean, nil
}

// LookupCurrency resolves a code against the catalog. The code is normalized
// before lookup.
func LookupCurrency(code string) (Currency, error) {
	clean, err := NormalizeCode(code)
	if err != nil {
		return Currency{}, err
	}
	c, ok := catalog[clean]
	if !ok {
		return Currency{}, &CurrencyNotFoundError{Code: clean}
	}
	return c, nil
}

// Currencies returns catalog entries of the given kinds (all when none
// given), sorted by code.
func Currencies(kinds ...CurrencyKind) []Currency {
	out := make([]Currency, 0, len(catalog))
	for _, c := range catalog {
		if len(kinds) == 0 {
			out = append(out, c)
			continue
		}
		for _, k := range kinds {
			if c.Kind == k {
				out = append(out, c)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
