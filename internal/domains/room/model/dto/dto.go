package dto

import (
	"pms/internal/domains/room/model"
	gDto "pms/shared/dto"
	gModel "pms/shared/model"
	"pms/shared/money"
	"time"

	"github.com/google/uuid"
)

type CreateRoomRequest struct {
	Number   string   `json:"number"    validate:"required,max=10"`
	Floor    int      `json:"floor"     validate:"gte=0"`
	Type     string   `json:"type"      validate:"required,oneof=single double twin suite family"`
	Capacity int      `json:"capacity"  validate:"required,gte=1,lte=20"`
	BaseRate float64  `json:"base_rate" validate:"gt=0,money"`
	Features []string `json:"features"  validate:"omitempty,dive,max=50"`
}

func (c *CreateRoomRequest) ToModel(branchID, actor string, now time.Time) model.Room {
	return model.Room{
		ID:       uuid.NewString(),
		BranchID: branchID,
		Number:   c.Number,
		Floor:    c.Floor,
		Type:     model.Type(c.Type),
		Capacity: c.Capacity,
		BaseRate: money.FromMajor(c.BaseRate),
		Features: c.Features,
		Status:   model.StatusAvailable,
		Metadata: gModel.NewMetadata(actor, now),
	}
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=available occupied cleaning maintenance"`
}

type RoomResponse struct {
	ID       string   `json:"id"`
	BranchID string   `json:"branch_id"`
	Number   string   `json:"number"`
	Floor    int      `json:"floor"`
	Type     string   `json:"type"`
	Capacity int      `json:"capacity"`
	BaseRate float64  `json:"base_rate"`
	Features []string `json:"features"`
	Status   string   `json:"status"`
	gDto.Metadata
}

func (r *RoomResponse) FromModel(model model.Room) {
	r.ID = model.ID
	r.BranchID = model.BranchID
	r.Number = model.Number
	r.Floor = model.Floor
	r.Type = string(model.Type)
	r.Capacity = model.Capacity
	r.BaseRate = model.BaseRate.Major()
	r.Features = append([]string{}, model.Features...)
	r.Status = string(model.Status)
	r.Metadata.FromModel(model.Metadata)
}

type GetRoomsResponse struct {
	Rooms []RoomResponse `json:"rooms"`
	Total int            `json:"total"`
}

func (r *GetRoomsResponse) FromModels(models []model.Room) {
	r.Total = len(models)

	r.Rooms = make([]RoomResponse, len(models))
	for i, mod := range models {
		r.Rooms[i].FromModel(mod)
	}
}
