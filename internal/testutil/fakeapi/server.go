// Package fakeapi is an in-memory stand-in for the POS REST API used by
// package tests. It enforces the server-side rules the client relies on:
// a single open register, withdrawals bounded by the drawer balance and
// positive amounts.
package fakeapi

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"time"

	"caixa/internal/api"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	Token = "test-token"
	PIN   = "4321"
)

type Server struct {
	*httptest.Server

	mu         sync.Mutex
	register   *api.CashRegister
	history    []api.CashRegister
	sales      []api.Sale
	products   []api.Product
	suppliers  []api.Supplier
	payables   []api.AccountPayable
	notes      []api.Notification
	payNotes   []api.PaymentNotification
	hits       map[string]int
	idempotent map[string]api.Sale

	// LoginToken is returned by /api/auth/login; tests may swap it for a JWT.
	LoginToken string
	// Delay, when set, is applied to list endpoints for the given search value.
	Delay map[string]time.Duration

	closedElsewhere bool
}

func New() *Server {
	gin.SetMode(gin.TestMode)
	s := &Server{
		hits:       map[string]int{},
		idempotent: map[string]api.Sale{},
		LoginToken: Token,
		Delay:      map[string]time.Duration{},
	}
	s.Server = httptest.NewServer(s.routes())
	return s
}

// Hits reports how many times METHOD+path was served.
func (s *Server) Hits(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[method+" "+path]
}

func (s *Server) SeedProducts(products ...api.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = append(s.products, products...)
}

func (s *Server) SeedPayables(payables ...api.AccountPayable) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payables = append(s.payables, payables...)
}

func (s *Server) SeedNotifications(notes []api.Notification, payNotes []api.PaymentNotification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = append(s.notes, notes...)
	s.payNotes = append(s.payNotes, payNotes...)
}

// Register returns a copy of the open register, if any.
func (s *Server) Register() *api.CashRegister {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.register == nil {
		return nil
	}
	r := *s.register
	return &r
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		s.mu.Lock()
		s.hits[c.Request.Method+" "+c.Request.URL.Path]++
		s.mu.Unlock()
		c.Next()
	})

	r.POST("/api/auth/login", s.login)
	r.POST("/api/auth/register", s.login)

	g := r.Group("/api", s.auth)
	g.POST("/verify-password", s.verifyPassword)

	g.GET("/cash-register", s.registerStatus)
	g.POST("/cash-register", s.openRegister)
	g.POST("/cash-register/transaction", s.addTransaction)
	g.GET("/cash-register/closing-data", s.closingData)
	g.POST("/cash-register/close", s.closeRegister)
	g.GET("/cash-register/daily", s.daily)

	g.GET("/sales", s.listSales)
	g.POST("/sales", s.createSale)
	g.GET("/sales/stats/daily", s.dailyStats)

	g.GET("/products", s.listProducts)
	g.POST("/products", s.createProduct)
	g.PATCH("/products/:id", s.patchProduct)
	g.POST("/products/import", s.importProducts)

	g.GET("/suppliers", s.listSuppliers)
	g.POST("/suppliers", s.createSupplier)
	g.PUT("/suppliers/:id", s.updateSupplier)
	g.DELETE("/suppliers/:id", s.deleteSupplier)

	g.GET("/accounts-payable", s.listPayables)
	g.POST("/accounts-payable", s.createPayable)
	g.GET("/accounts-payable/monthly-stats", s.monthlyStats)
	g.GET("/accounts-payable/installments/:id", s.installments)
	g.PUT("/accounts-payable/mark-as-paid", s.markAsPaid)
	g.PUT("/accounts-payable/:id", s.updatePayable)
	g.DELETE("/accounts-payable/:id", s.deletePayable)

	g.GET("/notifications", func(c *gin.Context) {
		s.mu.Lock()
		defer s.mu.Unlock()
		c.JSON(http.StatusOK, s.notes)
	})
	g.GET("/payments/notifications", func(c *gin.Context) {
		s.mu.Lock()
		defer s.mu.Unlock()
		c.JSON(http.StatusOK, s.payNotes)
	})
	g.GET("/reports", s.report)
	return r
}

func fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"message": msg})
}

func (s *Server) auth(c *gin.Context) {
	if c.GetHeader("Authorization") != "Bearer "+s.LoginToken {
		fail(c, http.StatusUnauthorized, "token inválido")
		return
	}
	c.Next()
}

func (s *Server) login(c *gin.Context) {
	var creds api.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil || creds.Email == "" {
		fail(c, http.StatusBadRequest, "credenciais inválidas")
		return
	}
	if creds.Password == "wrong" {
		fail(c, http.StatusUnauthorized, "email ou senha incorretos")
		return
	}
	resp := api.AuthResponse{Token: s.LoginToken, CompanyName: "Mercadinho Teste"}
	resp.User.Name = "operador teste"
	resp.User.Email = creds.Email
	resp.User.Role = "admin"
	c.JSON(http.StatusOK, resp)
}

func (s *Server) verifyPassword(c *gin.Context) {
	var body struct {
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, "senha ausente")
		return
	}
	c.JSON(http.StatusOK, gin.H{"isValid": body.Password == PIN})
}

func (s *Server) registerStatus(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, api.CashRegisterStatus{IsOpen: s.register != nil, CashRegister: s.register})
}

func (s *Server) openRegister(c *gin.Context) {
	var req api.OpenRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if !req.InitialAmount.IsPositive() || !req.CashLimit.IsPositive() {
		fail(c, http.StatusBadRequest, "valores devem ser positivos")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.register != nil {
		fail(c, http.StatusConflict, "já existe um caixa aberto")
		return
	}
	s.register = &api.CashRegister{
		ID:            uuid.NewString(),
		Status:        api.RegisterOpen,
		InitialAmount: req.InitialAmount,
		CurrentAmount: req.InitialAmount,
		CashLimit:     req.CashLimit,
		OpenedAt:      time.Now(),
		Transactions:  []api.Transaction{},
	}
	c.JSON(http.StatusCreated, s.register)
	s.dropIfClosedElsewhereLocked()
}

// SetClosedElsewhere makes every register write succeed and then drops the
// register, as if another terminal closed it right after.
func (s *Server) SetClosedElsewhere(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closedElsewhere = on
}

func (s *Server) dropIfClosedElsewhereLocked() {
	if !s.closedElsewhere || s.register == nil {
		return
	}
	now := time.Now()
	s.register.Status = api.RegisterClosed
	s.register.ClosedAt = &now
	s.history = append(s.history, *s.register)
	s.register = nil
}

func (s *Server) addTransaction(c *gin.Context) {
	var req api.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.register == nil {
		fail(c, http.StatusConflict, "nenhum caixa aberto")
		return
	}
	tx, msg := s.applyLocked(req)
	if msg != "" {
		fail(c, http.StatusBadRequest, msg)
		return
	}
	c.JSON(http.StatusCreated, tx)
	s.dropIfClosedElsewhereLocked()
}

func (s *Server) applyLocked(req api.TransactionRequest) (api.Transaction, string) {
	if !req.Amount.IsPositive() {
		return api.Transaction{}, "valor inválido"
	}
	switch req.Type {
	case api.TransactionWithdrawal:
		if req.Amount.GreaterThan(s.register.CurrentAmount) {
			return api.Transaction{}, "saldo insuficiente"
		}
		if strings.TrimSpace(req.Reason) == "" || len([]rune(req.Reason)) > 15 {
			return api.Transaction{}, "motivo inválido"
		}
		s.register.CurrentAmount = s.register.CurrentAmount.Sub(req.Amount)
	case api.TransactionSale:
		if req.PaymentMethod == api.PaymentCash || req.PaymentMethod == "" {
			s.register.CurrentAmount = s.register.CurrentAmount.Add(req.Amount)
		}
	default:
		return api.Transaction{}, "tipo inválido"
	}
	tx := api.Transaction{
		ID:            uuid.NewString(),
		Type:          req.Type,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		Reason:        req.Reason,
		CreatedAt:     time.Now(),
	}
	s.register.Transactions = append(s.register.Transactions, tx)
	return tx, ""
}

func (s *Server) expectedLocked() api.ClosingData {
	data := api.ClosingData{InitialAmount: s.register.InitialAmount}
	data.ExpectedBalance.Cash = s.register.InitialAmount
	for _, tx := range s.register.Transactions {
		switch tx.Type {
		case api.TransactionSale:
			method := tx.PaymentMethod
			if method == "" {
				method = api.PaymentCash
			}
			data.ExpectedBalance.Set(method, data.ExpectedBalance.Get(method).Add(tx.Amount))
			data.TotalSales = data.TotalSales.Add(tx.Amount)
		case api.TransactionWithdrawal:
			data.ExpectedBalance.Cash = data.ExpectedBalance.Cash.Sub(tx.Amount)
			data.TotalWithdrawals = data.TotalWithdrawals.Add(tx.Amount)
		}
	}
	return data
}

func (s *Server) closingData(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.register == nil {
		fail(c, http.StatusNotFound, "nenhum caixa aberto")
		return
	}
	c.JSON(http.StatusOK, s.expectedLocked())
}

func (s *Server) closeRegister(c *gin.Context) {
	var req api.CloseRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.register == nil {
		fail(c, http.StatusConflict, "nenhum caixa aberto")
		return
	}
	data := s.expectedLocked()
	now := time.Now()
	closed := *s.register
	closed.Status = api.RegisterClosed
	closed.ClosedAt = &now
	closed.FinalAmounts = &req.Values
	closed.Observation = req.Observation
	closed.ClosingSummary = &api.ClosingSummary{TotalSales: data.TotalSales, TotalWithdrawals: data.TotalWithdrawals}
	s.history = append(s.history, closed)
	s.register = nil
	c.JSON(http.StatusOK, closed)
}

func (s *Server) daily(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]api.CashRegister{}, s.history...)
	if s.register != nil {
		out = append(out, *s.register)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) listSales(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	method := api.PaymentMethod(c.Query("paymentMethod"))
	out := []api.Sale{}
	for _, sale := range s.sales {
		if method != "" && sale.PaymentMethod != method {
			continue
		}
		out = append(out, sale)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) createSale(c *gin.Context) {
	var req api.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Items) == 0 || !req.PaymentMethod.Valid() {
		fail(c, http.StatusBadRequest, "venda inválida")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := c.GetHeader("Idempotency-Key")
	if prev, ok := s.idempotent[key]; ok && key != "" {
		c.JSON(http.StatusOK, prev)
		return
	}
	if s.register == nil {
		fail(c, http.StatusConflict, "abra o caixa antes de vender")
		return
	}
	sale := api.Sale{
		ID:            uuid.NewString(),
		Items:         req.Items,
		PaymentMethod: req.PaymentMethod,
		Total:         req.Total,
		NFe:           req.NFe,
		CreatedAt:     time.Now(),
	}
	if _, msg := s.applyLocked(api.TransactionRequest{Type: api.TransactionSale, Amount: req.Total, PaymentMethod: req.PaymentMethod}); msg != "" {
		fail(c, http.StatusBadRequest, msg)
		return
	}
	s.sales = append(s.sales, sale)
	if key != "" {
		s.idempotent[key] = sale
	}
	c.JSON(http.StatusCreated, sale)
}

func (s *Server) dailyStats(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := api.DailySalesStats{Date: time.Now().Format(time.DateOnly)}
	for _, sale := range s.sales {
		stats.SalesCount++
		stats.TotalSales = stats.TotalSales.Add(sale.Total)
		stats.ByMethod.Set(sale.PaymentMethod, stats.ByMethod.Get(sale.PaymentMethod).Add(sale.Total))
	}
	if stats.SalesCount > 0 {
		stats.AverageTicket = stats.TotalSales.Div(decimal.NewFromInt(int64(stats.SalesCount))).Round(2)
	}
	c.JSON(http.StatusOK, stats)
}

func paginate[T any](c *gin.Context, items []T) api.Page[T] {
	page, limit := 1, 10
	fmt.Sscan(c.DefaultQuery("page", "1"), &page)
	fmt.Sscan(c.DefaultQuery("limit", "10"), &limit)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	start := (page - 1) * limit
	end := start + limit
	if start > len(items) {
		start = len(items)
	}
	if end > len(items) {
		end = len(items)
	}
	return api.Page[T]{
		Data:       append([]T{}, items[start:end]...),
		Total:      len(items),
		Page:       page,
		TotalPages: (len(items) + limit - 1) / limit,
	}
}

func (s *Server) delayFor(c *gin.Context) {
	if d, ok := s.Delay[c.Query("search")]; ok {
		time.Sleep(d)
	}
}

func (s *Server) listProducts(c *gin.Context) {
	s.delayFor(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	search := strings.ToLower(c.Query("search"))
	category := c.Query("category")
	out := []api.Product{}
	for _, p := range s.products {
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) && p.Barcode != search {
			continue
		}
		if category != "" && p.Category != category {
			continue
		}
		out = append(out, p)
	}
	desc := c.Query("order") == "desc"
	switch c.Query("sortBy") {
	case "price":
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.LessThan(out[j].Price) != desc })
	case "name":
		sort.SliceStable(out, func(i, j int) bool { return (out[i].Name < out[j].Name) != desc })
	}
	c.JSON(http.StatusOK, paginate(c, out))
}

func (s *Server) createProduct(c *gin.Context) {
	var in api.ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	p := api.Product{
		ID: uuid.NewString(), Name: in.Name, Barcode: in.Barcode, Category: in.Category,
		Price: in.Price, CostPrice: in.CostPrice, Stock: in.Stock, MinStock: in.MinStock,
		Unit: in.Unit, SupplierID: in.SupplierID, Active: true,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = append(s.products, p)
	c.JSON(http.StatusCreated, p)
}

func (s *Server) patchProduct(c *gin.Context) {
	var patch api.ProductPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.products {
		p := &s.products[i]
		if p.ID != c.Param("id") {
			continue
		}
		if patch.Name != nil {
			p.Name = *patch.Name
		}
		if patch.Price != nil {
			p.Price = *patch.Price
		}
		if patch.Stock != nil {
			p.Stock = *patch.Stock
		}
		if patch.MinStock != nil {
			p.MinStock = *patch.MinStock
		}
		if patch.Category != nil {
			p.Category = *patch.Category
		}
		if patch.Active != nil {
			p.Active = *patch.Active
		}
		c.JSON(http.StatusOK, p)
		return
	}
	fail(c, http.StatusNotFound, "produto não encontrado")
}

func (s *Server) importProducts(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, "arquivo ausente")
		return
	}
	f, err := file.Open()
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	defer f.Close()
	data, _ := io.ReadAll(f)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	c.JSON(http.StatusOK, api.ImportResult{Created: len(lines) - 1})
}

func (s *Server) listSuppliers(c *gin.Context) {
	s.delayFor(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	search := strings.ToLower(c.Query("search"))
	out := []api.Supplier{}
	for _, sup := range s.suppliers {
		if search != "" && !strings.Contains(strings.ToLower(sup.Name), search) {
			continue
		}
		out = append(out, sup)
	}
	c.JSON(http.StatusOK, paginate(c, out))
}

func (s *Server) createSupplier(c *gin.Context) {
	var in api.SupplierInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	sup := api.Supplier{ID: uuid.NewString(), Name: in.Name, Document: in.Document, Email: in.Email, Phone: in.Phone, Contact: in.Contact, Address: in.Address}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suppliers = append(s.suppliers, sup)
	c.JSON(http.StatusCreated, sup)
}

func (s *Server) updateSupplier(c *gin.Context) {
	var in api.SupplierInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.suppliers {
		if s.suppliers[i].ID == c.Param("id") {
			s.suppliers[i] = api.Supplier{ID: s.suppliers[i].ID, Name: in.Name, Document: in.Document, Email: in.Email, Phone: in.Phone, Contact: in.Contact, Address: in.Address}
			c.JSON(http.StatusOK, s.suppliers[i])
			return
		}
	}
	fail(c, http.StatusNotFound, "fornecedor não encontrado")
}

func (s *Server) deleteSupplier(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.suppliers {
		if s.suppliers[i].ID == c.Param("id") {
			s.suppliers = append(s.suppliers[:i], s.suppliers[i+1:]...)
			c.Status(http.StatusNoContent)
			return
		}
	}
	fail(c, http.StatusNotFound, "fornecedor não encontrado")
}

func (s *Server) listPayables(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	status := c.Query("status")
	out := []api.AccountPayable{}
	for _, p := range s.payables {
		if (status == "paid" && !p.IsPaid) || (status == "pending" && p.IsPaid) {
			continue
		}
		out = append(out, p)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) createPayable(c *gin.Context) {
	var in api.PayableInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if !in.TotalValue.IsPositive() {
		fail(c, http.StatusBadRequest, "valor inválido")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	base := api.AccountPayable{
		Type: in.Type, Description: in.Description, TotalValue: in.TotalValue,
		DueDate: in.DueDate, DueDay: in.DueDay, IsRecurring: in.IsRecurring,
		SupplierID: in.SupplierID,
	}
	if !in.IsInstallment {
		base.ID = uuid.NewString()
		s.payables = append(s.payables, base)
		c.JSON(http.StatusCreated, []api.AccountPayable{base})
		return
	}

	first, _ := time.Parse(time.DateOnly, in.DueDate)
	share := in.TotalValue.Div(decimal.NewFromInt(int64(in.TotalInstallments))).Round(2)
	created := make([]api.AccountPayable, 0, in.TotalInstallments)
	parent := ""
	for i := 1; i <= in.TotalInstallments; i++ {
		p := base
		p.ID = uuid.NewString()
		p.IsInstallment = true
		p.InstallmentNumber = i
		p.TotalInstallments = in.TotalInstallments
		p.TotalValue = share
		p.DueDate = first.AddDate(0, i-1, 0).Format(time.DateOnly)
		if parent == "" {
			parent = p.ID
		} else {
			p.ParentInstallmentID = parent
		}
		created = append(created, p)
	}
	s.payables = append(s.payables, created...)
	c.JSON(http.StatusCreated, created)
}

func (s *Server) updatePayable(c *gin.Context) {
	var in api.PayableInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.payables {
		p := &s.payables[i]
		if p.ID == c.Param("id") {
			p.Type, p.Description, p.TotalValue = in.Type, in.Description, in.TotalValue
			p.DueDate, p.DueDay, p.IsRecurring = in.DueDate, in.DueDay, in.IsRecurring
			c.JSON(http.StatusOK, p)
			return
		}
	}
	fail(c, http.StatusNotFound, "conta não encontrada")
}

func (s *Server) deletePayable(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.payables {
		if s.payables[i].ID == c.Param("id") {
			s.payables = append(s.payables[:i], s.payables[i+1:]...)
			c.Status(http.StatusNoContent)
			return
		}
	}
	fail(c, http.StatusNotFound, "conta não encontrada")
}

func (s *Server) monthlyStats(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	month := c.DefaultQuery("month", time.Now().Format("2006-01"))
	stats := api.MonthlyStats{Month: month}
	for _, p := range s.payables {
		if p.DueDate != "" && !strings.HasPrefix(p.DueDate, month) {
			continue
		}
		stats.DueCount++
		stats.TotalDue = stats.TotalDue.Add(p.TotalValue)
		if p.IsPaid {
			stats.TotalPaid = stats.TotalPaid.Add(p.TotalValue)
		} else {
			stats.TotalPending = stats.TotalPending.Add(p.TotalValue)
		}
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) installments(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := c.Param("id")
	out := []api.AccountPayable{}
	for _, p := range s.payables {
		if p.IsInstallment && (p.ID == id || p.ParentInstallmentID == id) {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		fail(c, http.StatusNotFound, "parcelamento não encontrado")
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) markAsPaid(c *gin.Context) {
	var body struct {
		ID string `json:"id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.payables {
		if s.payables[i].ID == body.ID {
			now := time.Now()
			s.payables[i].IsPaid = true
			s.payables[i].PaidAt = &now
			c.JSON(http.StatusOK, s.payables[i])
			return
		}
	}
	fail(c, http.StatusNotFound, "conta não encontrada")
}

func (s *Server) report(c *gin.Context) {
	reportType, period := c.Query("type"), c.Query("period")
	if reportType == "" || period == "" {
		fail(c, http.StatusBadRequest, "tipo e período são obrigatórios")
		return
	}
	body := fmt.Sprintf("type,period\n%s,%s\n", reportType, period)
	c.Data(http.StatusOK, "text/csv", []byte(body))
}
