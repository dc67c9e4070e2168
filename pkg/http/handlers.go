package http

import (
	"net/http"

	"liyu1981.xyz/fleet-dashboard-service/pkg/common"
	"liyu1981.xyz/fleet-dashboard-service/pkg/fleet"
	"liyu1981.xyz/fleet-dashboard-service/pkg/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	z "github.com/Oudwins/zog"
	"github.com/Oudwins/zog/zhttp"
)

type RecordsRequest struct {
	Status []string `json:"status"`
	Device int      `json:"device"`
	Search string   `json:"search"`
	Limit  int      `json:"limit"`
}

var recordsRequestSchema = z.Struct(z.Shape{
	"status": z.Slice(z.String()),
	"device": z.Int(),
	"search": z.String(),
	"limit":  z.Int(),
})

type StatusFilterRequest struct {
	Status []string `json:"status"`
}

var statusFilterRequestSchema = z.Struct(z.Shape{
	"status": z.Slice(z.String()),
})

func parseStatuses(raw []string) ([]models.Status, error) {
	statuses := make([]models.Status, 0, len(raw))
	for _, s := range raw {
		status, err := models.ParseStatus(s)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func (rs *RestfulServer) GetRecords(c *gin.Context) {
	if !rs.CheckClientLimiter(c.ClientIP()) {
		c.Status(http.StatusTooManyRequests)
		return
	}

	var req RecordsRequest
	if err := recordsRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	statuses, err := parseStatuses(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	records, err := rs.Fleet.Query.Records(fleet.QueryOptions{
		Statuses: statuses,
		DeviceID: req.Device,
		Search:   req.Search,
		Limit:    req.Limit,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, records)
}

type LatestResponse struct {
	models.MetricRecord
	Label string `json:"label"`
}

func (rs *RestfulServer) GetLatestPerDevice(c *gin.Context) {
	if !rs.CheckClientLimiter(c.ClientIP()) {
		c.Status(http.StatusTooManyRequests)
		return
	}

	var req StatusFilterRequest
	if err := statusFilterRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	statuses, err := parseStatuses(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	latest, err := rs.Fleet.Query.LatestPerDevice(fleet.QueryOptions{Statuses: statuses})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, common.Mapper(latest, func(r models.MetricRecord) LatestResponse {
		return LatestResponse{MetricRecord: r, Label: r.DeviceLabel()}
	}))
}

func (rs *RestfulServer) GetStatusCounts(c *gin.Context) {
	if !rs.CheckClientLimiter(c.ClientIP()) {
		c.Status(http.StatusTooManyRequests)
		return
	}

	var req StatusFilterRequest
	if err := statusFilterRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	statuses, err := parseStatuses(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	counts, err := rs.Fleet.Query.StatusCounts(fleet.QueryOptions{Statuses: statuses})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, counts)
}

func (rs *RestfulServer) GetSummary(c *gin.Context) {
	if !rs.CheckClientLimiter(c.ClientIP()) {
		c.Status(http.StatusTooManyRequests)
		return
	}

	var req StatusFilterRequest
	if err := statusFilterRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	statuses, err := parseStatuses(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	summary, err := rs.Fleet.Query.Summarize(fleet.QueryOptions{Statuses: statuses})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}

type LimiterRequest struct {
	Client string  `json:"client"`
	Rate   float64 `json:"rate"`
	Burst  int     `json:"burst"`
}

var limiterRequestSchema = z.Struct(z.Shape{
	"client": z.String().Required(),
	"rate":   z.Float64().Required(),
	"burst":  z.Int().Required(),
})

func (rs *RestfulServer) PostLimiter(c *gin.Context) {
	var req LimiterRequest
	if err := limiterRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	rs.SetLimiter(req.Client, req.Rate, req.Burst)

	logger := common.GetLoggerWith(common.LoggerNameRestfulServer)
	logger.Info("Updated client limiter",
		zap.String("client", req.Client),
		zap.Float64("rate", req.Rate),
		zap.Int("burst", req.Burst))

	c.Status(http.StatusOK)
}

func (rs *RestfulServer) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
