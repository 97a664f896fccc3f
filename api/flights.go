package api

import (
	"net/http"
	"strconv"

	"github.com/Domenick1991/skyticket/internal/service/flights"
	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	service flights.FlightUseCase
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("/favorites", h.favorites)
	router.GET("/tickets", h.search)
	router.GET("/tickets/:id", h.ticket)
}

func (h *FlightHandler) favorites(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondMessage(c, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	result, err := h.service.Favorites(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Success fetching favorite flights", result)
}

func (h *FlightHandler) search(c *gin.Context) {
	query := flights.SearchQuery{
		From:      c.Query("from"),
		To:        c.Query("to"),
		Departure: c.Query("departure"),
		Return:    c.Query("return"),
		SeatClass: c.Query("seat_class"),
	}
	var err error
	if query.Passengers, err = intQuery(c, "passengers"); err != nil {
		respondMessage(c, http.StatusBadRequest, "invalid passengers")
		return
	}
	if query.Page, err = intQuery(c, "page"); err != nil {
		respondMessage(c, http.StatusBadRequest, "invalid page")
		return
	}
	if query.Limit, err = intQuery(c, "limit"); err != nil {
		respondMessage(c, http.StatusBadRequest, "invalid limit")
		return
	}

	result, err := h.service.SearchTickets(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Success fetching tickets", result)
}

func (h *FlightHandler) ticket(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ticket, err := h.service.GetTicket(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Success fetching ticket", ticket)
}
