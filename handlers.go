package main

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"fzp/models"
	"fzp/pkg/protocol"
)

func setupRoutes(r *gin.Engine) {
	r.POST("/webhook/fahrzeugprotokoll", protocolHandler)
	r.GET("/health", healthHandler)
	r.GET("/protokolle", listProtocolsHandler)
}

// protocolHandler receives one inspection protocol and runs the full
// pipeline. 200 with the result on success, 400 for handled failures,
// 500 for anything unexpected.
func protocolHandler(c *gin.Context) {
	var sub protocol.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Keine JSON-Daten erhalten"})
		return
	}

	result, err := processor.Process(c.Request.Context(), &sub)
	if err != nil {
		slog.Error("protocol processing failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	if !result.Success {
		c.JSON(http.StatusBadRequest, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// listProtocolsHandler returns the most recent processed protocols.
func listProtocolsHandler(c *gin.Context) {
	if db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database not configured"})
		return
	}
	var items []models.ProtocolRecord
	q := db.Model(&models.ProtocolRecord{})
	if plate := c.Query("plate"); plate != "" {
		q = q.Where("plate = ?", plate)
	}
	if err := q.Preload("Photos").Order("id desc").Limit(100).Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, items)
}
