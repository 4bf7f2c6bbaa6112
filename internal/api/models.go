package api

import (
	"time"

	"herosg/internal/booking"
	"herosg/internal/directory"
	"herosg/internal/identity"
)

// Public projections. Password material never appears in any of these; the
// conversion functions only read the fields listed here.

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toUserResponse(a identity.Account) userResponse {
	return userResponse{
		ID:        a.ID,
		Email:     a.Email,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

type partnerResponse struct {
	ID          string    `json:"id"`
	PartnerName string    `json:"partnerName"`
	Email       string    `json:"email"`
	Address     string    `json:"address"`
	Phone       string    `json:"phone"`
	Verified    bool      `json:"verified"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toPartnerResponse(a identity.Account) partnerResponse {
	return partnerResponse{
		ID:          a.ID,
		PartnerName: strDeref(a.PartnerName),
		Email:       a.Email,
		Address:     strDeref(a.Address),
		Phone:       strDeref(a.Phone),
		Verified:    a.Verified,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

type adminResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toAdminResponse(a identity.Account) adminResponse {
	return adminResponse{
		ID:        a.ID,
		Email:     a.Email,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

type gpResponse struct {
	ID        string    `json:"id"`
	GPName    string    `json:"gpName"`
	GPContact string    `json:"gpContact"`
	Available bool      `json:"available"`
	Longitude *float64  `json:"longitude"`
	Latitude  *float64  `json:"latitude"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toGPResponse(gp directory.GP) gpResponse {
	return gpResponse{
		ID:        gp.ID,
		GPName:    gp.Name,
		GPContact: gp.Phone,
		Available: gp.Available,
		Longitude: gp.Longitude,
		Latitude:  gp.Latitude,
		CreatedAt: gp.CreatedAt,
		UpdatedAt: gp.UpdatedAt,
	}
}

type requestResponse struct {
	ID              string     `json:"id"`
	UserID          string     `json:"userId"`
	PartnerID       *string    `json:"partnerId"`
	Description     string     `json:"description"`
	GPResponse      *string    `json:"gpResponse"`
	Status          string     `json:"status"`
	AppointmentTime *time.Time `json:"appointmentTime"`
	LastUpdater     string     `json:"lastUpdater"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func toRequestResponse(req booking.Request) requestResponse {
	return requestResponse{
		ID:              req.ID,
		UserID:          req.UserID,
		PartnerID:       req.PartnerID,
		Description:     req.Description,
		GPResponse:      req.GPResponse,
		Status:          string(req.Status),
		AppointmentTime: req.AppointmentTime,
		LastUpdater:     req.LastUpdater,
		CreatedAt:       req.CreatedAt,
		UpdatedAt:       req.UpdatedAt,
	}
}

// listResponse is the shared paging envelope.
type listResponse[T any] struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
	Count  int `json:"count"`
	Items  []T `json:"items"`
}

func toListResponse[S, T any](offset, limit, count int, in []S, conv func(S) T) listResponse[T] {
	items := make([]T, 0, len(in))
	for _, v := range in {
		items = append(items, conv(v))
	}
	return listResponse[T]{Offset: offset, Limit: limit, Count: count, Items: items}
}

func strDeref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// ---- request bodies ----

type registerUserRequest struct {
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Phone     *string `json:"phone"`
}

type registerPartnerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	PartnerName string `json:"partnerName"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
}

type registerAdminRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type createGPRequest struct {
	GPName    string   `json:"gpName"`
	GPContact string   `json:"gpContact"`
	Available *bool    `json:"available"`
	Longitude *float64 `json:"longitude"`
	Latitude  *float64 `json:"latitude"`
}

type createRequestRequest struct {
	Description     string     `json:"description"`
	PartnerID       *string    `json:"partnerId"`
	AppointmentTime *time.Time `json:"appointmentTime"`
}

type patchRequestRequest struct {
	Description     *string    `json:"description"`
	GPResponse      *string    `json:"gpResponse"`
	PartnerID       *string    `json:"partnerId"`
	Status          *string    `json:"status"`
	AppointmentTime *time.Time `json:"appointmentTime"`
}
