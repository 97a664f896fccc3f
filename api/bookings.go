package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/skyticket/internal/domain"
	"github.com/Domenick1991/skyticket/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/new-booking/:tripType", h.create)
	router.GET("/booking-history", h.history)
	router.GET("/booking-history/:bookingId", h.detail)
}

func (h *BookingHandler) create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var input booking.CreateBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondMessage(c, http.StatusBadRequest, "invalid request body")
		return
	}
	input.TripType = c.Param("tripType")

	summary, err := h.service.CreateBooking(c.Request.Context(), userID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Success creating new Booking", summary)
}

func (h *BookingHandler) history(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	filter, err := booking.ParseFilter(c.Query("search"), c.Query("date"), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}

	bookings, err := h.service.ListBookings(c.Request.Context(), userID, filter)
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]bookingView, 0, len(bookings))
	for i := range bookings {
		views = append(views, newBookingView(&bookings[i]))
	}
	respond(c, http.StatusOK, "Success fetching booking history", views)
}

func (h *BookingHandler) detail(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	bookingID, ok := pathID(c, "bookingId")
	if !ok {
		return
	}

	b, err := h.service.GetBookingDetail(c.Request.Context(), userID, bookingID)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Success fetching booking detail", newBookingView(b))
}

type passengerView struct {
	Title          string `json:"title"`
	FullName       string `json:"fullName"`
	FamilyName     string `json:"familyName,omitempty"`
	BirthDate      string `json:"birthDate"`
	Nationality    string `json:"nationality"`
	IdentityType   string `json:"identityType"`
	IdentityNumber string `json:"identityNumber"`
	IssuingCountry string `json:"issuingCountry"`
	ExpiredDate    string `json:"expiredDate"`
	AgeGroup       string `json:"ageGroup"`
}

type paymentView struct {
	Method string    `json:"method"`
	PaidAt time.Time `json:"paid_at"`
}

type bookingView struct {
	ID          int64                `json:"id"`
	BookingCode string               `json:"booking_code"`
	Status      domain.BookingStatus `json:"status"`
	IsRoundTrip bool                 `json:"is_round_trip"`
	Adults      int                  `json:"adult"`
	Children    int                  `json:"child"`
	Infants     int                  `json:"baby"`
	SeatCount   int                  `json:"seat_count"`
	TotalPrice  int64                `json:"total_price"`
	BookingTax  int64                `json:"booking_tax"`
	Donation    int64                `json:"donation"`
	URLPayment  *string              `json:"url_payment"`
	PaidBefore  time.Time            `json:"paid_before"`
	CreatedAt   time.Time            `json:"created_at"`
	Departure   *domain.Ticket       `json:"departure,omitempty"`
	Return      *domain.Ticket       `json:"return,omitempty"`
	Passengers  []passengerView      `json:"passengers,omitempty"`
	Payment     *paymentView         `json:"payment,omitempty"`
}

func newBookingView(b *domain.Booking) bookingView {
	view := bookingView{
		ID:          b.ID,
		BookingCode: b.BookingCode,
		Status:      b.Status,
		IsRoundTrip: b.IsRoundTrip,
		Adults:      b.Adults,
		Children:    b.Children,
		Infants:     b.Infants,
		SeatCount:   b.SeatCount,
		TotalPrice:  b.TotalPrice,
		BookingTax:  b.BookingTax,
		Donation:    b.Donation,
		URLPayment:  b.URLPayment,
		PaidBefore:  b.ExpiredPaid,
		CreatedAt:   b.CreatedAt,
		Departure:   b.DepartureTicket,
		Return:      b.ReturnTicket,
	}

	for _, p := range b.Passengers {
		view.Passengers = append(view.Passengers, passengerView{
			Title:          p.Title,
			FullName:       p.FullName,
			FamilyName:     p.FamilyName,
			BirthDate:      p.BirthDate.Format(time.DateOnly),
			Nationality:    p.Nationality,
			IdentityType:   p.IdentityType,
			IdentityNumber: p.IdentityNumber,
			IssuingCountry: p.IssuingCountry,
			ExpiredDate:    p.ExpiredDate.Format(time.DateOnly),
			AgeGroup:       p.AgeGroup,
		})
	}

	if b.Payment != nil {
		view.Payment = &paymentView{Method: b.Payment.Name, PaidAt: b.Payment.PaidAt}
	}
	return view
}
