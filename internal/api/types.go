package api

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentCredit PaymentMethod = "credit"
	PaymentDebit  PaymentMethod = "debit"
	PaymentPix    PaymentMethod = "pix"
)

// PaymentMethods lists every method in display order.
var PaymentMethods = []PaymentMethod{PaymentCash, PaymentCredit, PaymentDebit, PaymentPix}

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCredit, PaymentDebit, PaymentPix:
		return true
	}
	return false
}

type RegisterStatus string

const (
	RegisterOpen   RegisterStatus = "open"
	RegisterClosed RegisterStatus = "closed"
)

type TransactionType string

const (
	TransactionSale       TransactionType = "sale"
	TransactionWithdrawal TransactionType = "withdrawal"
)

type Transaction struct {
	ID            string          `json:"id"`
	Type          TransactionType `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod PaymentMethod   `json:"paymentMethod,omitempty"`
	Reason        string          `json:"reason,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// Balances holds one amount per payment method. It is used both for the
// server-derived expected balance and for the operator's closing count.
type Balances struct {
	Cash   decimal.Decimal `json:"cash"`
	Credit decimal.Decimal `json:"credit"`
	Debit  decimal.Decimal `json:"debit"`
	Pix    decimal.Decimal `json:"pix"`
}

func (b Balances) Get(m PaymentMethod) decimal.Decimal {
	switch m {
	case PaymentCash:
		return b.Cash
	case PaymentCredit:
		return b.Credit
	case PaymentDebit:
		return b.Debit
	case PaymentPix:
		return b.Pix
	}
	return decimal.Zero
}

func (b *Balances) Set(m PaymentMethod, v decimal.Decimal) {
	switch m {
	case PaymentCash:
		b.Cash = v
	case PaymentCredit:
		b.Credit = v
	case PaymentDebit:
		b.Debit = v
	case PaymentPix:
		b.Pix = v
	}
}

func (b Balances) Total() decimal.Decimal {
	return b.Cash.Add(b.Credit).Add(b.Debit).Add(b.Pix)
}

type ClosingSummary struct {
	TotalSales       decimal.Decimal `json:"totalSales"`
	TotalWithdrawals decimal.Decimal `json:"totalWithdrawals"`
}

type CashRegister struct {
	ID             string          `json:"id"`
	Status         RegisterStatus  `json:"status"`
	InitialAmount  decimal.Decimal `json:"initialAmount"`
	CurrentAmount  decimal.Decimal `json:"currentAmount"`
	CashLimit      decimal.Decimal `json:"cashLimit"`
	OpenedAt       time.Time       `json:"openedAt"`
	ClosedAt       *time.Time      `json:"closedAt"`
	Transactions   []Transaction   `json:"transactions"`
	FinalAmounts   *Balances       `json:"finalAmounts"`
	ClosingSummary *ClosingSummary `json:"closingSummary"`
	Observation    string          `json:"observation,omitempty"`
}

// Consistent reports whether closedAt and finalAmounts are set exactly
// when the register is closed.
func (r CashRegister) Consistent() bool {
	closed := r.Status == RegisterClosed
	return closed == (r.ClosedAt != nil) && closed == (r.FinalAmounts != nil)
}

type CashRegisterStatus struct {
	IsOpen       bool          `json:"isOpen"`
	CashRegister *CashRegister `json:"cashRegister"`
}

type OpenRegisterRequest struct {
	InitialAmount decimal.Decimal `json:"initialAmount"`
	CashLimit     decimal.Decimal `json:"cashLimit"`
}

type TransactionRequest struct {
	Type          TransactionType `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod PaymentMethod   `json:"paymentMethod,omitempty"`
	Reason        string          `json:"reason,omitempty"`
}

type ClosingData struct {
	InitialAmount    decimal.Decimal `json:"initialAmount"`
	TotalSales       decimal.Decimal `json:"totalSales"`
	TotalWithdrawals decimal.Decimal `json:"totalWithdrawals"`
	ExpectedBalance  Balances        `json:"expectedBalance"`
}

type CloseRegisterRequest struct {
	Values      Balances `json:"values"`
	Observation string   `json:"observation"`
}

type verifyPasswordRequest struct {
	Password string `json:"password"`
}

type verifyPasswordResponse struct {
	IsValid bool `json:"isValid"`
}

type SaleItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Total     decimal.Decimal `json:"total"`
}

type CreateSaleRequest struct {
	Items         []SaleItem      `json:"items"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	Total         decimal.Decimal `json:"total"`
	NFe           string          `json:"nfe,omitempty"`
}

type Sale struct {
	ID            string          `json:"id"`
	Items         []SaleItem      `json:"items"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	Total         decimal.Decimal `json:"total"`
	NFe           string          `json:"nfe,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type DailySalesStats struct {
	Date          string          `json:"date"`
	TotalSales    decimal.Decimal `json:"totalSales"`
	SalesCount    int             `json:"salesCount"`
	AverageTicket decimal.Decimal `json:"averageTicket"`
	ByMethod      Balances        `json:"byMethod"`
}

type Product struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Barcode    string          `json:"barcode,omitempty"`
	Category   string          `json:"category,omitempty"`
	Price      decimal.Decimal `json:"price"`
	CostPrice  decimal.Decimal `json:"costPrice"`
	Stock      decimal.Decimal `json:"stock"`
	MinStock   decimal.Decimal `json:"minStock"`
	Unit       string          `json:"unit,omitempty"`
	SupplierID string          `json:"supplierId,omitempty"`
	Active     bool            `json:"active"`
}

type ProductInput struct {
	Name       string          `json:"name" validate:"required,max=120"`
	Barcode    string          `json:"barcode,omitempty" validate:"omitempty,numeric,max=14"`
	Category   string          `json:"category,omitempty"`
	Price      decimal.Decimal `json:"price" validate:"gt=0"`
	CostPrice  decimal.Decimal `json:"costPrice" validate:"gte=0"`
	Stock      decimal.Decimal `json:"stock" validate:"gte=0"`
	MinStock   decimal.Decimal `json:"minStock" validate:"gte=0"`
	Unit       string          `json:"unit,omitempty" validate:"omitempty,oneof=un kg l m cx"`
	SupplierID string          `json:"supplierId,omitempty"`
}

// ProductPatch carries only the fields that change.
type ProductPatch struct {
	Name     *string          `json:"name,omitempty"`
	Price    *decimal.Decimal `json:"price,omitempty"`
	Stock    *decimal.Decimal `json:"stock,omitempty"`
	MinStock *decimal.Decimal `json:"minStock,omitempty"`
	Category *string          `json:"category,omitempty"`
	Active   *bool            `json:"active,omitempty"`
}

type ImportResult struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Errors  []string `json:"errors,omitempty"`
}

type Supplier struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Document string `json:"document,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Contact  string `json:"contact,omitempty"`
	Address  string `json:"address,omitempty"`
}

type SupplierInput struct {
	Name     string `json:"name" validate:"required,max=120"`
	Document string `json:"document,omitempty" validate:"omitempty,numeric,min=11,max=14"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,max=20"`
	Contact  string `json:"contact,omitempty"`
	Address  string `json:"address,omitempty"`
}

type PayableType string

const (
	PayableSupplier PayableType = "supplier"
	PayableRent     PayableType = "rent"
	PayableOther    PayableType = "other"
)

type AccountPayable struct {
	ID                  string          `json:"id"`
	Type                PayableType     `json:"type"`
	Description         string          `json:"description"`
	TotalValue          decimal.Decimal `json:"totalValue"`
	DueDate             string          `json:"dueDate,omitempty"`
	DueDay              int             `json:"dueDay,omitempty"`
	IsPaid              bool            `json:"isPaid"`
	PaidAt              *time.Time      `json:"paidAt,omitempty"`
	IsRecurring         bool            `json:"isRecurring"`
	IsInstallment       bool            `json:"isInstallment"`
	InstallmentNumber   int             `json:"installmentNumber,omitempty"`
	TotalInstallments   int             `json:"totalInstallments,omitempty"`
	ParentInstallmentID string          `json:"parentInstallmentId,omitempty"`
	SupplierID          string          `json:"supplierId,omitempty"`
}

type PayableInput struct {
	Type              PayableType     `json:"type" validate:"required,oneof=supplier rent other"`
	Description       string          `json:"description" validate:"required,max=200"`
	TotalValue        decimal.Decimal `json:"totalValue" validate:"gt=0"`
	DueDate           string          `json:"dueDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DueDay            int             `json:"dueDay,omitempty" validate:"omitempty,min=1,max=31"`
	IsRecurring       bool            `json:"isRecurring"`
	IsInstallment     bool            `json:"isInstallment"`
	TotalInstallments int             `json:"totalInstallments,omitempty" validate:"omitempty,min=2,max=120"`
	SupplierID        string          `json:"supplierId,omitempty" validate:"required_if=Type supplier"`
}

type markAsPaidRequest struct {
	ID string `json:"id"`
}

type MonthlyStats struct {
	Month        string          `json:"month"`
	TotalDue     decimal.Decimal `json:"totalDue"`
	TotalPaid    decimal.Decimal `json:"totalPaid"`
	TotalPending decimal.Decimal `json:"totalPending"`
	OverdueCount int             `json:"overdueCount"`
	DueCount     int             `json:"dueCount"`
}

type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

type PaymentNotification struct {
	ID        string          `json:"id"`
	PayableID string          `json:"payableId"`
	Message   string          `json:"message"`
	Amount    decimal.Decimal `json:"amount"`
	DueDate   string          `json:"dueDate"`
	CreatedAt time.Time       `json:"createdAt"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterAccountRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	CompanyName string `json:"companyName"`
}

type AuthResponse struct {
	Token       string `json:"token"`
	CompanyName string `json:"companyName"`
	User        struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"user"`
}

// Page is the envelope of every paginated list endpoint.
type Page[T any] struct {
	Data       []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	TotalPages int `json:"totalPages"`
}
