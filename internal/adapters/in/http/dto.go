package http

import (
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
)

// CoordinatesRequest is a point supplied by the caller.
type CoordinatesRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required" example:"6.5244"`
	Longitude *float64 `json:"longitude" validate:"required" example:"3.3792"`
}

// FindNearestRiderRequest asks for the nearest free rider of a company.
type FindNearestRiderRequest struct {
	Pickup      *CoordinatesRequest `json:"pickup" validate:"required"`
	Dropoff     *CoordinatesRequest `json:"dropoff" validate:"omitempty"`
	Description string              `json:"description" validate:"max=2000"`
	CompanyID   string              `json:"companyId" validate:"required"`
}

func (r CoordinatesRequest) toCommand() *commands.Coordinates {
	return &commands.Coordinates{Latitude: *r.Latitude, Longitude: *r.Longitude}
}

func (r FindNearestRiderRequest) toInput(requireDropoff bool) commands.DispatchRiderInput {
	in := commands.DispatchRiderInput{
		CompanyID:      r.CompanyID,
		Description:    r.Description,
		RequireDropoff: requireDropoff,
	}
	if r.Pickup != nil {
		in.Pickup = r.Pickup.toCommand()
	}
	if r.Dropoff != nil {
		in.Dropoff = r.Dropoff.toCommand()
	}
	return in
}

// LocationResponse is a point together with how it was obtained: "measured" or "simulated".
type LocationResponse struct {
	Latitude  float64 `json:"latitude" example:"6.5514"`
	Longitude float64 `json:"longitude" example:"3.3792"`
	Source    string  `json:"source,omitempty" example:"measured"`
}

func locationResponse(l kernel.Location) LocationResponse {
	return LocationResponse{
		Latitude:  l.Latitude(),
		Longitude: l.Longitude(),
		Source:    string(l.Provenance()),
	}
}

func pointResponse(p queries.Point) LocationResponse {
	return LocationResponse{Latitude: p.Latitude, Longitude: p.Longitude}
}

// RiderResponse describes the chosen rider.
type RiderResponse struct {
	Number            string           `json:"number" example:"+2348012345678"`
	Name              string           `json:"name" example:"Rider 5678"`
	PhoneNumber       string           `json:"phoneNumber" example:"+2348012345678"`
	Distance          float64          `json:"distance" example:"3.0"`
	Location          LocationResponse `json:"location"`
	EstimatedDuration int              `json:"estimatedDuration" example:"6"`
}

// FindNearestRiderResponse is returned once the assignment is stored.
type FindNearestRiderResponse struct {
	Success    bool          `json:"success" example:"true"`
	DeliveryID string        `json:"deliveryId"`
	Rider      RiderResponse `json:"rider"`
}

func findNearestRiderResponse(res commands.DispatchRiderResult) FindNearestRiderResponse {
	return FindNearestRiderResponse{
		Success:    true,
		DeliveryID: res.AssignmentID.String(),
		Rider: RiderResponse{
			Number:            res.RiderNumber,
			Name:              riderName(res.RiderNumber),
			PhoneNumber:       res.RiderNumber,
			Distance:          res.DistanceKm,
			Location:          locationResponse(res.Location),
			EstimatedDuration: res.EstimatedDuration,
		},
	}
}

// riderName is a display placeholder until rider profiles exist.
func riderName(number string) string {
	if len(number) > 4 {
		number = number[len(number)-4:]
	}
	return "Rider " + number
}

// RiderLocationsRequest asks for fresh locations of the listed riders.
type RiderLocationsRequest struct {
	CompanyID    string   `json:"companyId" validate:"required"`
	RiderNumbers []string `json:"riderNumbers" validate:"required,min=1"`
}

// RiderLocationResponse is one entry of a location snapshot.
type RiderLocationResponse struct {
	RiderNumber string           `json:"riderNumber"`
	Location    LocationResponse `json:"location"`
	Timestamp   time.Time        `json:"timestamp"`
}

// RiderLocationsResponse lists rider locations.
type RiderLocationsResponse struct {
	Success   bool                    `json:"success" example:"true"`
	Locations []RiderLocationResponse `json:"locations"`
}

func refreshedLocationsResponse(locations []ports.RiderLocation) RiderLocationsResponse {
	out := make([]RiderLocationResponse, 0, len(locations))
	for _, l := range locations {
		out = append(out, RiderLocationResponse{
			RiderNumber: l.RiderNumber,
			Location:    locationResponse(l.Location),
			Timestamp:   l.LastUpdated.UTC(),
		})
	}
	return RiderLocationsResponse{Success: true, Locations: out}
}

func snapshotResponse(locations []queries.GetRiderLocationsQueryResponse) RiderLocationsResponse {
	out := make([]RiderLocationResponse, 0, len(locations))
	for _, l := range locations {
		loc := pointResponse(l.Location)
		loc.Source = l.Source
		out = append(out, RiderLocationResponse{
			RiderNumber: l.RiderNumber,
			Location:    loc,
			Timestamp:   l.LastUpdated.UTC(),
		})
	}
	return RiderLocationsResponse{Success: true, Locations: out}
}

// DeliveryResponse is the delivery read model.
type DeliveryResponse struct {
	ID                string            `json:"id"`
	CompanyID         string            `json:"companyId"`
	Status            string            `json:"status" example:"assigned"`
	Description       string            `json:"description"`
	Pickup            LocationResponse  `json:"pickup"`
	Dropoff           *LocationResponse `json:"dropoff,omitempty"`
	RiderNumber       string            `json:"riderNumber"`
	RiderLocation     LocationResponse  `json:"riderLocation"`
	Distance          float64           `json:"distance"`
	EstimatedDuration int               `json:"estimatedDuration"`
	CreatedAt         time.Time         `json:"createdAt"`
	AssignedAt        time.Time         `json:"assignedAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

// DeliveryEnvelope wraps a single delivery.
type DeliveryEnvelope struct {
	Success  bool             `json:"success" example:"true"`
	Delivery DeliveryResponse `json:"delivery"`
}

func deliveryFromQuery(d queries.GetAssignmentQueryResponse) DeliveryResponse {
	out := DeliveryResponse{
		ID:                d.ID,
		CompanyID:         d.CompanyID,
		Status:            d.Status,
		Description:       d.Description,
		Pickup:            pointResponse(d.Pickup),
		RiderNumber:       d.RiderNumber,
		RiderLocation:     pointResponse(d.RiderLocation),
		Distance:          d.DistanceKm,
		EstimatedDuration: d.EstimatedDuration,
		CreatedAt:         d.CreatedAt.UTC(),
		AssignedAt:        d.AssignedAt.UTC(),
		UpdatedAt:         d.UpdatedAt.UTC(),
	}
	out.RiderLocation.Source = d.RiderSource
	if d.Dropoff != nil {
		dropoff := pointResponse(*d.Dropoff)
		out.Dropoff = &dropoff
	}
	return out
}

func deliveryFromAggregate(a *assignment.Assignment) DeliveryResponse {
	pickup := locationResponse(a.Pickup())
	pickup.Source = ""
	out := DeliveryResponse{
		ID:                a.ID().String(),
		CompanyID:         a.CompanyID(),
		Status:            a.Status().String(),
		Description:       a.Description(),
		Pickup:            pickup,
		RiderNumber:       a.RiderNumber(),
		RiderLocation:     locationResponse(a.RiderLocation()),
		Distance:          a.DistanceKm(),
		EstimatedDuration: a.EstimatedDuration(),
		CreatedAt:         a.CreatedAt().UTC(),
		AssignedAt:        a.AssignedAt().UTC(),
		UpdatedAt:         a.UpdatedAt().UTC(),
	}
	if dropoff, ok := a.Dropoff(); ok {
		d := locationResponse(dropoff)
		d.Source = ""
		out.Dropoff = &d
	}
	return out
}

// HealthResponse reports liveness.
type HealthResponse struct {
	Status    string    `json:"status" example:"OK"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorResponse is the body of every failed request. Error is only filled in development.
type ErrorResponse struct {
	Success bool   `json:"success" example:"false"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}
