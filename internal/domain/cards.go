package domain

import (
	"strings"
	"sync"
	"time"
)

// ============================================================
// Credit Cards
// ============================================================

// CardBrand is the network a card is issued on.
type CardBrand int

const (
	BrandVisa CardBrand = iota
	BrandMastercard
	BrandBitcoin
	BrandEthereum
	BrandSui
)

var brandNames = [...]string{"Visa", "Mastercard", "Bitcoin", "Ethereum", "Sui"}

// Index returns the ordinal of the brand.
func (b CardBrand) Index() int { return int(b) }

func (b CardBrand) String() string {
	if b < 0 || int(b) >= len(brandNames) {
		return "Unknown"
	}
	return brandNames[b]
}

// ParseCardBrand resolves a brand name, case-insensitively.
// An empty name yields Visa.
func ParseCardBrand(name string) (CardBrand, error) {
	if name == "" {
		return BrandVisa, nil
	}
	for i, n := range brandNames {
		if strings.EqualFold(n, name) {
			return CardBrand(i), nil
		}
	}
	return 0, &ErrValidation{Field: "brand", Message: "unknown card brand '" + name + "'"}
}

// Card statuses as exposed by Status.
const (
	CardStatusActive    = "active"
	CardStatusSuspended = "suspended"
	CardStatusStolen    = "stolen"
)

// CreditCard tracks the active/stolen lifecycle of a card. It has no link
// to account balances.
//
// A card only ever moves towards inactive: there is no operation that
// reactivates it or clears the stolen flag.
type CreditCard struct {
	mu sync.Mutex

	number   string
	owner    Customer
	brand    CardBrand
	issuedAt time.Time

	active bool
	stolen bool
}

// NewCreditCard creates an active, non-stolen card.
func NewCreditCard(number string, owner Customer, brand CardBrand, issuedAt time.Time) *CreditCard {
	return &CreditCard{
		number:   number,
		owner:    owner,
		brand:    brand,
		issuedAt: issuedAt,
		active:   true,
	}
}

func (c *CreditCard) Number() string      { return c.number }
func (c *CreditCard) Owner() Customer     { return c.owner }
func (c *CreditCard) Brand() CardBrand    { return c.brand }
func (c *CreditCard) IssuedAt() time.Time { return c.issuedAt }

// IsActive reports whether the card can be used.
func (c *CreditCard) IsActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// IsStolen reports whether the card was reported stolen.
func (c *CreditCard) IsStolen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stolen
}

// Suspend deactivates the card.
func (c *CreditCard) Suspend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = false
}

// ReportStolen flags the card stolen and deactivates it in one step.
func (c *CreditCard) ReportStolen() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stolen = true
	c.active = false
}

// Status summarises the lifecycle flags.
func (c *CreditCard) Status() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status()
}

func (c *CreditCard) status() string {
	switch {
	case c.stolen:
		return CardStatusStolen
	case !c.active:
		return CardStatusSuspended
	default:
		return CardStatusActive
	}
}

// Snapshot returns a consistent copy of the card state.
func (c *CreditCard) Snapshot() CreditCardView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CreditCardView{
		Number:   c.number,
		Owner:    c.owner,
		Brand:    c.brand,
		Active:   c.active,
		Stolen:   c.stolen,
		Status:   c.status(),
		IssuedAt: c.issuedAt,
	}
}

// CreditCardView is a point-in-time copy of a CreditCard.
type CreditCardView struct {
	Number   string
	Owner    Customer
	Brand    CardBrand
	Active   bool
	Stolen   bool
	Status   string
	IssuedAt time.Time
}
