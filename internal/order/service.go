package order

import (
	"context"
	"fmt"
	"strings"

	"equipment-backend/internal/apperror"
	"equipment-backend/internal/audit"
	"equipment-backend/internal/auth"
	"equipment-backend/internal/events"
	"equipment-backend/internal/inventory"
	"equipment-backend/internal/logging"
	"equipment-backend/internal/metrics"
	"equipment-backend/internal/models"
	"equipment-backend/internal/notification"
	"equipment-backend/internal/query"
	"equipment-backend/internal/storage"
	"equipment-backend/internal/validation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Sipariş oluşturma durumları
const (
	stateValidating = "validating"
	stateReserving  = "reserving"
	statePersisting = "persisting"
	stateCommitted  = "committed"
	stateFailed     = "failed"
)

type MaterialInput struct {
	EquipmentID uuid.UUID `json:"equipment_id" validate:"required"`
	Quantity    int       `json:"quantity" validate:"gt=0"`
}

type CreateOrderRequest struct {
	GeneratorModel string          `json:"generator_model" validate:"required,max=255"`
	OrderReference string          `json:"order_reference" validate:"required,max=255"`
	ReceiverName   string          `json:"receiver_name" validate:"required,max=255"`
	Notes          *string         `json:"notes"`
	Materials      []MaterialInput `json:"materials" validate:"required,min=1,dive"`
}

// UpdateOrderRequest: Materials verilirse eski malzemeler tamamen değiştirilir
type UpdateOrderRequest struct {
	GeneratorModel *string          `json:"generator_model" validate:"omitempty,min=1,max=255"`
	OrderReference *string          `json:"order_reference" validate:"omitempty,min=1,max=255"`
	ReceiverName   *string          `json:"receiver_name" validate:"omitempty,min=1,max=255"`
	Notes          *string          `json:"notes"`
	Materials      *[]MaterialInput `json:"materials" validate:"omitempty,min=1,dive"`
}

type ListFilter struct {
	ReceiverName string
	Page         query.Page
}

type Service struct {
	db        *gorm.DB
	ledger    *inventory.Ledger
	store     storage.Store
	publisher events.Publisher
}

func NewService(db *gorm.DB, store storage.Store, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &Service{
		db:        db,
		ledger:    inventory.NewLedger(db),
		store:     store,
		publisher: publisher,
	}
}

// Create: doğrulama mutasyondan önce yapılır, sonra başlık + malzemeler + stok düşümü + OUT hareketleri tek transaction.
// Herhangi bir adım hata verirse hiçbir şey kalıcı olmaz.
func (s *Service) Create(ctx context.Context, actor auth.Principal, req CreateOrderRequest) (*models.Order, error) {
	normalizeCreate(&req)

	// id baştan atanır, böylece reddedilen denemeler de loglarda ayırt edilir
	order := models.Order{
		ID:             uuid.New(),
		GeneratorModel: req.GeneratorModel,
		OrderReference: req.OrderReference,
		ReceiverName:   req.ReceiverName,
		Notes:          req.Notes,
		CreatedBy:      actor.ID,
	}
	trace := newTrace(order.ID)

	if err := validation.Struct(req); err != nil {
		return nil, s.reject(trace, "validation", err)
	}
	if err := s.checkAvailability(ctx, s.db, req.Materials); err != nil {
		return nil, s.reject(trace, reasonOf(err), err)
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, s.reject(trace, "storage", apperror.FromDB(tx.Error, "Failed to create order"))
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	trace.to(stateReserving)
	if err := tx.Omit("Materials").Create(&order).Error; err != nil {
		tx.Rollback()
		return nil, s.reject(trace, "storage", apperror.FromDB(err, "Failed to create order"))
	}
	materials, err := s.reserveMaterials(ctx, tx, actor, &order, req.Materials)
	if err != nil {
		tx.Rollback()
		return nil, s.reject(trace, reasonOf(err), err)
	}
	order.Materials = materials

	trace.to(statePersisting)
	if err := audit.WriteLog(tx, audit.LogOptions{
		Actor:       actor,
		EntityType:  "order",
		EntityID:    order.ID,
		Action:      models.AuditActionCreate,
		Description: fmt.Sprintf("Sipariş oluşturuldu: %s (%d kalem)", order.OrderReference, len(materials)),
		After:       order,
	}); err != nil {
		tx.Rollback()
		return nil, s.reject(trace, "storage", apperror.Storage("Failed to create order", err))
	}

	if err := tx.Commit().Error; err != nil {
		return nil, s.reject(trace, "storage", apperror.FromDB(err, "Failed to create order"))
	}
	trace.to(stateCommitted)
	metrics.OrdersCreated.Inc()

	events.PublishSafe(ctx, s.publisher, orderEvent(events.OrderCreated, actor, &order))
	return &order, nil
}

// checkAvailability: aynı ekipman birden fazla satırda olabilir, toplam miktar kontrol edilir
func (s *Service) checkAvailability(ctx context.Context, db *gorm.DB, lines []MaterialInput) error {
	totals := make(map[uuid.UUID]int, len(lines))
	order := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		if _, ok := totals[l.EquipmentID]; !ok {
			order = append(order, l.EquipmentID)
		}
		totals[l.EquipmentID] += l.Quantity
	}

	for _, id := range order {
		var eq models.Equipment
		if err := db.WithContext(ctx).First(&eq, "id = ?", id).Error; err != nil {
			return apperror.FromDB(err, fmt.Sprintf("Equipment %s not found", id))
		}
		if eq.QuantityAvailable < totals[id] {
			return apperror.InsufficientStock(eq.Name, eq.QuantityAvailable, totals[id])
		}
	}
	return nil
}

// reserveMaterials: her satır için malzeme kaydı, koşullu stok düşümü ve OUT hareketi
func (s *Service) reserveMaterials(ctx context.Context, tx *gorm.DB, actor auth.Principal, order *models.Order, lines []MaterialInput) ([]models.OrderMaterial, error) {
	ledger := s.ledger.WithTx(tx)
	materials := make([]models.OrderMaterial, 0, len(lines))

	for _, l := range lines {
		m := models.OrderMaterial{OrderID: order.ID, EquipmentID: l.EquipmentID, Quantity: l.Quantity}
		if err := tx.Create(&m).Error; err != nil {
			return nil, apperror.FromDB(err, "Failed to create order materials")
		}

		res, err := ledger.TryReserve(ctx, l.EquipmentID, l.Quantity)
		if err != nil {
			return nil, err
		}

		mv := models.StockMovement{
			EquipmentID:    l.EquipmentID,
			Type:           models.MovementOut,
			Quantity:       l.Quantity,
			RelatedOrderID: &order.ID,
			ReceiverName:   order.ReceiverName,
			CreatedBy:      actor.ID,
		}
		if err := tx.Create(&mv).Error; err != nil {
			return nil, apperror.FromDB(err, "Failed to record stock movement")
		}

		if _, err := notification.CreateLowStock(tx, res.Equipment, res.PreviousAvailable); err != nil {
			return nil, apperror.FromDB(err, "Failed to create notification")
		}
		materials = append(materials, m)
	}
	return materials, nil
}

// releaseMaterials: siparişin malzemelerini stoğa iade eder, her satır için IN hareketi yazar
func (s *Service) releaseMaterials(ctx context.Context, tx *gorm.DB, actor auth.Principal, order *models.Order, withMovements bool) error {
	ledger := s.ledger.WithTx(tx)
	for _, m := range order.Materials {
		if err := ledger.Release(ctx, m.EquipmentID, m.Quantity); err != nil {
			return err
		}
		if !withMovements {
			continue
		}
		mv := models.StockMovement{
			EquipmentID:    m.EquipmentID,
			Type:           models.MovementIn,
			Quantity:       m.Quantity,
			RelatedOrderID: &order.ID,
			ReceiverName:   order.ReceiverName,
			CreatedBy:      actor.ID,
		}
		if err := tx.Create(&mv).Error; err != nil {
			return apperror.FromDB(err, "Failed to record stock movement")
		}
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Materials", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, apperror.FromDB(err, "Order not found")
	}
	return &order, nil
}

// List: en yeni önce
func (s *Service) List(ctx context.Context, f ListFilter) ([]models.Order, error) {
	q := s.db.WithContext(ctx).Model(&models.Order{}).
		Preload("Materials", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") })
	if f.ReceiverName != "" {
		q = q.Where("LOWER(receiver_name) LIKE LOWER(?)", "%"+f.ReceiverName+"%")
	}
	q = f.Page.Apply(q)

	list := []models.Order{}
	if err := q.Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, apperror.FromDB(err, "Failed to fetch orders")
	}
	return list, nil
}

// Update: başlık alanları yamalanır. Materials verildiyse eski malzemeler IN hareketiyle iade edilir,
// yenileri OUT hareketiyle düşülür; yeni set için stok yetmezse güncellemenin tamamı geri alınır.
func (s *Service) Update(ctx context.Context, actor auth.Principal, id uuid.UUID, req UpdateOrderRequest) (*models.Order, error) {
	normalizeUpdate(&req)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, apperror.FromDB(tx.Error, "Failed to update order")
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	var order models.Order
	if err := tx.Preload("Materials").First(&order, "id = ?", id).Error; err != nil {
		tx.Rollback()
		return nil, apperror.FromDB(err, "Order not found")
	}
	before := order

	changes := map[string]any{}
	if req.GeneratorModel != nil {
		order.GeneratorModel = *req.GeneratorModel
		changes["generator_model"] = order.GeneratorModel
	}
	if req.OrderReference != nil {
		order.OrderReference = *req.OrderReference
		changes["order_reference"] = order.OrderReference
	}
	if req.ReceiverName != nil {
		order.ReceiverName = *req.ReceiverName
		changes["receiver_name"] = order.ReceiverName
	}
	if req.Notes != nil {
		// boş string notu temizler
		if *req.Notes == "" {
			order.Notes = nil
		} else {
			order.Notes = req.Notes
		}
		changes["notes"] = order.Notes
	}
	if len(changes) > 0 {
		if err := tx.Model(&models.Order{}).Where("id = ?", id).Updates(changes).Error; err != nil {
			tx.Rollback()
			return nil, apperror.FromDB(err, "Failed to update order")
		}
	}

	if req.Materials != nil {
		if err := s.releaseMaterials(ctx, tx, actor, &before, true); err != nil {
			tx.Rollback()
			return nil, err
		}
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderMaterial{}).Error; err != nil {
			tx.Rollback()
			return nil, apperror.FromDB(err, "Failed to update order materials")
		}
		// eski malzemeler iade edildikten sonra kontrol edilir, siparişin kendi miktarı da kullanılabilir sayılır
		if err := s.checkAvailability(ctx, tx, *req.Materials); err != nil {
			tx.Rollback()
			return nil, err
		}
		materials, err := s.reserveMaterials(ctx, tx, actor, &order, *req.Materials)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		order.Materials = materials
	}

	if err := audit.WriteLog(tx, audit.LogOptions{
		Actor:       actor,
		EntityType:  "order",
		EntityID:    id,
		Action:      models.AuditActionUpdate,
		Description: "Sipariş güncellendi: " + order.OrderReference,
		Before:      before,
		After:       order,
	}); err != nil {
		tx.Rollback()
		return nil, apperror.Storage("Failed to update order", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperror.FromDB(err, "Failed to update order")
	}

	updated, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	events.PublishSafe(ctx, s.publisher, orderEvent(events.OrderUpdated, actor, updated))
	return updated, nil
}

// Delete: malzemeler stoğa iade edilir (quantity_total'da doyar), sipariş ve bağlı kayıtlar silinir.
// Ek dosyaları commit sonrası silinir, olmayan dosya hata sayılmaz.
func (s *Service) Delete(ctx context.Context, actor auth.Principal, id uuid.UUID) error {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return apperror.FromDB(tx.Error, "Failed to delete order")
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	var order models.Order
	if err := tx.Preload("Materials").First(&order, "id = ?", id).Error; err != nil {
		tx.Rollback()
		return apperror.FromDB(err, "Order not found")
	}
	var attachments []models.OrderAttachment
	if err := tx.Where("order_id = ?", id).Find(&attachments).Error; err != nil {
		tx.Rollback()
		return apperror.FromDB(err, "Failed to delete order")
	}

	// hareketler de silindiği için iade IN hareketi yazılmaz
	if err := s.releaseMaterials(ctx, tx, actor, &order, false); err != nil {
		tx.Rollback()
		return err
	}

	steps := []struct {
		model any
		where string
	}{
		{&models.OrderMaterial{}, "order_id = ?"},
		{&models.StockMovement{}, "related_order_id = ?"},
		{&models.OrderAttachment{}, "order_id = ?"},
		{&models.Order{}, "id = ?"},
	}
	for _, st := range steps {
		if err := tx.Where(st.where, id).Delete(st.model).Error; err != nil {
			tx.Rollback()
			return apperror.FromDB(err, "Failed to delete order")
		}
	}

	if err := audit.WriteLog(tx, audit.LogOptions{
		Actor:       actor,
		EntityType:  "order",
		EntityID:    id,
		Action:      models.AuditActionDelete,
		Description: fmt.Sprintf("Sipariş silindi: %s (%d kalem stoğa iade edildi)", order.OrderReference, len(order.Materials)),
		Before:      order,
	}); err != nil {
		tx.Rollback()
		return apperror.Storage("Failed to delete order", err)
	}

	if err := tx.Commit().Error; err != nil {
		return apperror.FromDB(err, "Failed to delete order")
	}

	for _, a := range attachments {
		if err := s.store.Delete(ctx, a.FilePath); err != nil {
			logging.LogError("order", "Delete", "attachment blob", a.FilePath, err)
		}
	}
	events.PublishSafe(ctx, s.publisher, orderEvent(events.OrderDeleted, actor, &order))
	return nil
}

func (s *Service) reject(t *trace, reason string, err error) error {
	t.fail(err)
	metrics.OrdersRejected.WithLabelValues(reason).Inc()
	return err
}

func reasonOf(err error) string {
	switch {
	case isKind(err, apperror.ErrInsufficientStock):
		return "insufficient_stock"
	case isKind(err, apperror.ErrNotFound):
		return "not_found"
	case isKind(err, apperror.ErrValidation):
		return "validation"
	default:
		return "storage"
	}
}

func normalizeCreate(req *CreateOrderRequest) {
	req.GeneratorModel = strings.TrimSpace(req.GeneratorModel)
	req.OrderReference = strings.TrimSpace(req.OrderReference)
	req.ReceiverName = strings.TrimSpace(req.ReceiverName)
	if req.Notes != nil {
		n := strings.TrimSpace(*req.Notes)
		if n == "" {
			req.Notes = nil
		} else {
			req.Notes = &n
		}
	}
}

func normalizeUpdate(req *UpdateOrderRequest) {
	for _, p := range []*string{req.GeneratorModel, req.OrderReference, req.ReceiverName, req.Notes} {
		if p != nil {
			*p = strings.TrimSpace(*p)
		}
	}
}

func orderEvent(typ string, actor auth.Principal, o *models.Order) events.OrderEvent {
	ev := events.OrderEvent{Type: typ, OrderID: o.ID, ActorID: actor.ID}
	for _, m := range o.Materials {
		ev.Materials = append(ev.Materials, events.MaterialLine{EquipmentID: m.EquipmentID, Quantity: m.Quantity})
	}
	return ev
}
