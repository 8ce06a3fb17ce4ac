package service

import (
	"context"
	"time"

	"github.com/Josepmarimon/bau-assist-sub002/internal/model"
	"github.com/Josepmarimon/bau-assist-sub002/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// InventoryService manages the software catalogue, classroom installations and the
// equipment inventory.
type InventoryService struct {
	softwareRepo  *repository.SoftwareRepository
	equipmentRepo *repository.EquipmentRepository
	log           zerolog.Logger
}

func NewInventoryService(softwareRepo *repository.SoftwareRepository, equipmentRepo *repository.EquipmentRepository, log zerolog.Logger) *InventoryService {
	return &InventoryService{
		softwareRepo:  softwareRepo,
		equipmentRepo: equipmentRepo,
		log:           log.With().Str("component", "inventory_service").Logger(),
	}
}

// --- Software ---

func softwareFromRequest(req model.SoftwareRequest) (*model.Software, error) {
	expiry, err := repository.ParseDate(req.ExpiryDate)
	if err != nil {
		return nil, invalid("expiry_date: %v", err)
	}
	os := req.OperatingSystems
	if os == nil {
		os = []string{}
	}
	return &model.Software{
		Name:             req.Name,
		Version:          req.Version,
		Category:         req.Category,
		LicenseType:      req.LicenseType,
		OperatingSystems: os,
		ExpiryDate:       expiry,
		ProviderName:     req.ProviderName,
		ProviderEmail:    req.ProviderEmail,
	}, nil
}

func (s *InventoryService) ListSoftware(ctx context.Context, search, category string) ([]model.Software, error) {
	return s.softwareRepo.List(ctx, search, category)
}

func (s *InventoryService) GetSoftware(ctx context.Context, id uuid.UUID) (*model.Software, error) {
	sw, err := s.softwareRepo.GetByID(ctx, id)
	return sw, notFound(err)
}

func (s *InventoryService) CreateSoftware(ctx context.Context, req model.SoftwareRequest) (*model.Software, error) {
	sw, err := softwareFromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := s.softwareRepo.Create(ctx, sw); err != nil {
		return nil, err
	}
	return sw, nil
}

func (s *InventoryService) UpdateSoftware(ctx context.Context, id uuid.UUID, req model.SoftwareRequest) (*model.Software, error) {
	sw, err := softwareFromRequest(req)
	if err != nil {
		return nil, err
	}
	sw.ID = id
	if err := s.softwareRepo.Update(ctx, sw); err != nil {
		return nil, notFound(err)
	}
	return sw, nil
}

func (s *InventoryService) DeleteSoftware(ctx context.Context, id uuid.UUID) error {
	return notFound(s.softwareRepo.Delete(ctx, id))
}

// InstallRequest installs software in a classroom.
type InstallRequest struct {
	SoftwareID       uuid.UUID `json:"software_id" binding:"required"`
	InstalledVersion *string   `json:"installed_version" binding:"omitempty,max=50"`
	InstalledAt      string    `json:"installed_at" binding:"omitempty,datetime=2006-01-02"`
}

func (s *InventoryService) Install(ctx context.Context, classroomID uuid.UUID, req InstallRequest) (*model.ClassroomSoftware, error) {
	at, err := repository.ParseDate(req.InstalledAt)
	if err != nil {
		return nil, invalid("installed_at: %v", err)
	}
	cs := &model.ClassroomSoftware{
		ClassroomID:      classroomID,
		SoftwareID:       req.SoftwareID,
		InstalledVersion: req.InstalledVersion,
		InstalledAt:      at,
	}
	if err := s.softwareRepo.Install(ctx, cs); err != nil {
		return nil, err
	}
	s.log.Info().
		Str("classroom_id", classroomID.String()).
		Str("software_id", req.SoftwareID.String()).
		Msg("Software installed")
	return cs, nil
}

func (s *InventoryService) Uninstall(ctx context.Context, classroomID, softwareID uuid.UUID) error {
	return notFound(s.softwareRepo.Uninstall(ctx, classroomID, softwareID))
}

func (s *InventoryService) Installed(ctx context.Context, classroomID uuid.UUID) ([]model.ClassroomSoftware, error) {
	return s.softwareRepo.ListInstalled(ctx, classroomID)
}

// --- Equipment ---

func (s *InventoryService) ListTypes(ctx context.Context, category string) ([]model.EquipmentType, error) {
	return s.equipmentRepo.ListTypes(ctx, category)
}

func (s *InventoryService) GetType(ctx context.Context, id uuid.UUID) (*model.EquipmentType, error) {
	t, err := s.equipmentRepo.GetType(ctx, id)
	return t, notFound(err)
}

func (s *InventoryService) SaveType(ctx context.Context, id uuid.UUID, req model.EquipmentTypeRequest) (*model.EquipmentType, error) {
	t := &model.EquipmentType{
		ID:          id,
		Code:        req.Code,
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		IsActive:    true,
	}
	if req.IsActive != nil {
		t.IsActive = *req.IsActive
	}
	var err error
	if id == uuid.Nil {
		err = s.equipmentRepo.CreateType(ctx, t)
	} else {
		err = s.equipmentRepo.UpdateType(ctx, t)
	}
	if err != nil {
		return nil, notFound(err)
	}
	return t, nil
}

func (s *InventoryService) DeleteType(ctx context.Context, id uuid.UUID) error {
	return notFound(s.equipmentRepo.DeleteType(ctx, id))
}

func (s *InventoryService) ListInventory(ctx context.Context, classroomID *uuid.UUID) ([]model.EquipmentInventory, error) {
	return s.equipmentRepo.ListInventory(ctx, classroomID)
}

func (s *InventoryService) SaveInventory(ctx context.Context, id uuid.UUID, req model.EquipmentInventoryRequest) (*model.EquipmentInventory, error) {
	item := &model.EquipmentInventory{
		ID:              id,
		EquipmentTypeID: req.EquipmentTypeID,
		ClassroomID:     req.ClassroomID,
		Quantity:        req.Quantity,
		Status:          req.Status,
		SerialNumber:    req.SerialNumber,
		Notes:           req.Notes,
	}
	var err error
	if id == uuid.Nil {
		err = s.equipmentRepo.CreateInventory(ctx, item)
	} else {
		err = s.equipmentRepo.UpdateInventory(ctx, item)
	}
	if err != nil {
		return nil, notFound(err)
	}
	return item, nil
}

func (s *InventoryService) DeleteInventory(ctx context.Context, id uuid.UUID) error {
	return notFound(s.equipmentRepo.DeleteInventory(ctx, id))
}

// --- Licences ---

// LicenseAlerts lists software whose licence is expired or expires within alertDays,
// soonest first.
func (s *InventoryService) LicenseAlerts(ctx context.Context, today time.Time, alertDays int) ([]model.LicenseAlert, error) {
	software, err := s.softwareRepo.WithExpiryBefore(ctx, today.AddDate(0, 0, alertDays+1))
	if err != nil {
		return nil, err
	}
	alerts := make([]model.LicenseAlert, 0, len(software))
	for _, sw := range software {
		if sw.ExpiryDate == nil {
			continue
		}
		status, days := LicenseStatusOf(*sw.ExpiryDate, today, alertDays)
		if status == model.LicenseOK {
			continue
		}
		alerts = append(alerts, model.LicenseAlert{
			SoftwareID:      sw.ID,
			Name:            sw.Name,
			Version:         sw.Version,
			ExpiryDate:      *sw.ExpiryDate,
			DaysUntilExpiry: days,
			Status:          status,
			ProviderName:    sw.ProviderName,
			ProviderEmail:   sw.ProviderEmail,
		})
	}
	return alerts, nil
}
