package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/order-intake/internal/domain"
	"github.com/vladislavdragonenkov/order-intake/internal/service/intake"
)

// OrderHandler реализует HTTP API приёма заказов поверх intake.Service.
type OrderHandler struct {
	service *intake.Service
	logger  *log.Entry
}

// NewOrderHandler конструирует обработчик с зависимостями.
func NewOrderHandler(service *intake.Service, logger *log.Entry) *OrderHandler {
	if logger == nil {
		logger = log.New().WithField("component", "rest-handler")
	}
	return &OrderHandler{service: service, logger: logger}
}

// Register вешает маршруты на роутер.
func (h *OrderHandler) Register(r chi.Router) {
	r.Post("/orders", h.CreateOrder)
}

// createOrderItem — позиция заказа во входящем запросе.
type createOrderItem struct {
	ProductID int64           `json:"id_product"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Qty       int32           `json:"qty"`
}

// createOrderRequest — тело POST /orders. Формат повторяет внешний
// контракт исходной системы.
type createOrderRequest struct {
	CustomerID  int64             `json:"id_customer"`
	Name        string            `json:"name"`
	Email       string            `json:"email"`
	Address     string            `json:"address"`
	PaymentType string            `json:"payment_type"`
	Items       []createOrderItem `json:"items"`
}

type createOrderResult struct {
	OrderNumber string `json:"order_number"`
}

type createOrderResponse struct {
	Message string            `json:"message"`
	Result  createOrderResult `json:"result"`
}

type errorResponse struct {
	Error    string `json:"error"`
	Details  string `json:"details,omitempty"`
	Attempts int    `json:"attempts,omitempty"`
}

// CreateOrder принимает заказ и возвращает его номер.
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}
	if req.CustomerID <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "id_customer is required"})
		return
	}

	items := make([]domain.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, domain.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.Price,
			Qty:       item.Qty,
		})
	}

	number, err := h.service.Process(r.Context(), req.CustomerID, intake.Payload{
		Name:        req.Name,
		Email:       req.Email,
		Address:     req.Address,
		PaymentType: req.PaymentType,
		Items:       items,
	})
	if err != nil {
		h.writeProcessError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, createOrderResponse{
		Message: "order accepted",
		Result:  createOrderResult{OrderNumber: number},
	})
}

func (h *OrderHandler) writeProcessError(w http.ResponseWriter, err error) {
	if domain.IsInvalidOrderData(err) {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "invalid order data",
			Details: err.Error(),
		})
		return
	}

	if pe, ok := persistenceError(err); ok {
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:    "failed to save order",
			Details:  pe.Err.Error(),
			Attempts: pe.Attempts,
		})
		return
	}

	h.logger.WithError(err).Error("unexpected error processing order")
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "error processing order"})
}

func persistenceError(err error) (*domain.PersistenceError, bool) {
	var pe *domain.PersistenceError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
