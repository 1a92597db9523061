package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"house-dashboard/charts"
	"house-dashboard/models"
	"house-dashboard/services"
)

type errorResponse struct {
	Error string `json:"error"`
}

// pageData feeds templates/index.html.
type pageData struct {
	BackgroundURL string
	TotalHouses   int
	Controls      []services.Subscription
	Slider        services.Subscription
	ScatterAxis   services.Subscription
	BarAxis       services.Subscription
}

func (s *Server) handleIndex(c *gin.Context) {
	data := pageData{
		BackgroundURL: s.cfg.BackgroundImageURL,
		TotalHouses:   s.summary.TotalHouses,
		Controls:      s.dispatcher.Controls(),
	}
	for _, sub := range data.Controls {
		switch sub.Control {
		case services.ControlPriceFilter:
			data.Slider = sub
		case services.ControlScatterAxis:
			data.ScatterAxis = sub
		case services.ControlBarAxis:
			data.BarAxis = sub
		}
	}
	c.HTML(http.StatusOK, "index.html", data)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"houses": s.summary.TotalHouses,
	})
}

func (s *Server) handleSummary(c *gin.Context) {
	c.JSON(http.StatusOK, s.summary)
}

func (s *Server) handleControls(c *gin.Context) {
	c.JSON(http.StatusOK, s.dispatcher.Controls())
}

func (s *Server) handleEvent(c *gin.Context) {
	var ev services.Event
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid event: " + err.Error()})
		return
	}
	if u, ok := s.dispatch(c, ev); ok {
		c.JSON(http.StatusOK, u)
	}
}

func (s *Server) handleMapView(c *gin.Context) {
	s.serveView(c, mapEvent)
}

func (s *Server) handleScatterView(c *gin.Context) {
	s.serveView(c, scatterEvent)
}

func (s *Server) handleBarView(c *gin.Context) {
	s.serveView(c, barEvent)
}

// serveView answers a GET view by replaying it as a control event, so query
// strings and the event endpoint share one code path.
func (s *Server) serveView(c *gin.Context, build func(*gin.Context) (services.Event, error)) {
	ev, err := build(c)
	if err != nil {
		c.JSON(statusFor(err), errorResponse{Error: err.Error()})
		return
	}
	if u, ok := s.dispatch(c, ev); ok {
		c.JSON(http.StatusOK, u.Figure)
	}
}

func (s *Server) handleChart(c *gin.Context) {
	name := c.Param("figure")
	if !strings.HasSuffix(name, ".png") {
		c.JSON(http.StatusNotFound, errorResponse{Error: "unknown figure " + name})
		return
	}

	var buf bytes.Buffer
	var err error

	switch charts.Kind(strings.TrimSuffix(name, ".png")) {
	case charts.KindPriceByYear:
		err = charts.PriceByYear(&buf, s.summary.ByYear)
	case charts.KindCondition:
		err = charts.ConditionBars(&buf, s.summary.ByCondition)
	case charts.KindMap:
		u, ok := s.dispatchView(c, mapEvent)
		if !ok {
			return
		}
		err = charts.Map(&buf, u.Figure.(models.MapView))
	case charts.KindScatter:
		u, ok := s.dispatchView(c, scatterEvent)
		if !ok {
			return
		}
		err = charts.Scatter(&buf, u.Figure.(models.ScatterView))
	case charts.KindBar:
		u, ok := s.dispatchView(c, barEvent)
		if !ok {
			return
		}
		err = charts.Bars(&buf, u.Figure.(models.BarView))
	default:
		c.JSON(http.StatusNotFound, errorResponse{Error: "unknown figure " + name})
		return
	}

	if err != nil {
		s.logger.Error("[server] render %s: %v", name, err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "render failed"})
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func (s *Server) dispatchView(c *gin.Context, build func(*gin.Context) (services.Event, error)) (*services.Update, bool) {
	ev, err := build(c)
	if err != nil {
		c.JSON(statusFor(err), errorResponse{Error: err.Error()})
		return nil, false
	}
	return s.dispatch(c, ev)
}

// dispatch runs ev and writes the error response itself on failure.
func (s *Server) dispatch(c *gin.Context, ev services.Event) (*services.Update, bool) {
	u, err := s.dispatcher.Dispatch(ev)
	s.metrics.observeEvent(string(ev.Control), err)
	if err != nil {
		s.logger.Warn("[server] event %s rejected: %v", ev.Control, err)
		c.JSON(statusFor(err), errorResponse{Error: err.Error()})
		return nil, false
	}
	return u, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrUnknownControl):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidValue):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func mapEvent(c *gin.Context) (services.Event, error) {
	low, err := queryFloat(c, "low", models.DefaultPriceRange.LowMillions)
	if err != nil {
		return services.Event{}, err
	}
	high, err := queryFloat(c, "high", models.DefaultPriceRange.HighMillions)
	if err != nil {
		return services.Event{}, err
	}
	raw, err := json.Marshal([]float64{low, high})
	if err != nil {
		return services.Event{}, err
	}
	return services.Event{Control: services.ControlPriceFilter, Value: raw}, nil
}

func scatterEvent(c *gin.Context) (services.Event, error) {
	return axisEvent(c, services.ControlScatterAxis, string(models.AxisBedrooms))
}

func barEvent(c *gin.Context) (services.Event, error) {
	return axisEvent(c, services.ControlBarAxis, string(models.AxisWaterfront))
}

func axisEvent(c *gin.Context, control services.ControlID, fallback string) (services.Event, error) {
	raw, err := json.Marshal(c.DefaultQuery("x", fallback))
	if err != nil {
		return services.Event{}, err
	}
	return services.Event{Control: control, Value: raw}, nil
}

func queryFloat(c *gin.Context, key string, fallback float64) (float64, error) {
	v, ok := c.GetQuery(key)
	if !ok || v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %s=%q is not a finite number", services.ErrInvalidValue, key, v)
	}
	return f, nil
}
