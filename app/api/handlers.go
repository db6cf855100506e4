package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/socialpress/socialpress/app/config"
	"github.com/socialpress/socialpress/app/database"
	"github.com/socialpress/socialpress/app/ingest"
	"github.com/socialpress/socialpress/app/tasks"
)

func NewHandler(configCache *config.ConfigCache, userRepo database.UserRepository,
	recordRepo database.RecordRepository, pipeline tasks.PipelineRunner,
	sources []ingest.Source, scheduler tasks.TaskSchedulerInterface) *Handler {
	return &Handler{
		userRepo:    userRepo,
		recordRepo:  recordRepo,
		configCache: configCache,
		pipeline:    pipeline,
		sources:     sources,
		scheduler:   scheduler,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if userCount, err := h.userRepo.GetUserCount(); err == nil {
		health["users"] = userCount
	}

	health["loaded_configurations"] = h.configCache.GetConfigCount()

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := map[string]interface{}{
		"loaded_configurations": h.configCache.GetConfigCount(),
	}

	if userCount, err := h.userRepo.GetUserCount(); err == nil {
		stats["users"] = userCount
	}
	if recordCount, err := h.recordRepo.GetRecordCount(); err == nil {
		stats["records"] = recordCount
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) APIListUsers(c *gin.Context) {
	configs := h.configCache.GetConfigs()

	users := make([]map[string]interface{}, 0, len(configs))

	for _, userConfig := range configs {
		userInfo := map[string]interface{}{
			"name":            userConfig.Name,
			"email":           userConfig.Email,
			"language":        userConfig.Settings.Language,
			"scrape_interval": userConfig.Settings.GetScrapeInterval().String(),
			"twitter_refs":    len(userConfig.Sources.Twitter),
			"facebook_refs":   len(userConfig.Sources.Facebook),
		}

		if user, err := h.userRepo.GetUserByName(userConfig.Name); err == nil && user != nil {
			userInfo["id"] = user.ID
			userInfo["last_scraped_at"] = user.LastScrapedAt
		}

		users = append(users, userInfo)
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"users": users,
		"total": len(users),
	})
}

func (h *Handler) APIGetUserDetails(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing user name parameter"})
		return
	}

	userConfig, err := h.configCache.GetConfig(name)
	if err != nil {
		slog.Error("User configuration not found", "user", name, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "User configuration not found"})
		return
	}

	user, err := h.userRepo.GetUserByName(name)
	if err != nil {
		slog.Error("Database error", "operation", "get_user", "user", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if user == nil {
		slog.Error("User not found in database", "user", name)
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found in database"})
		return
	}

	details := map[string]interface{}{
		"name":              name,
		"email":             userConfig.Email,
		"language":          userConfig.Settings.Language,
		"facebook_language": userConfig.Settings.FacebookLanguage,
		"scrape_interval":   userConfig.Settings.GetScrapeInterval().String(),
		"sources": map[string]interface{}{
			"twitter":  userConfig.Sources.Twitter,
			"facebook": userConfig.Sources.Facebook,
		},
	}

	details["database"] = map[string]interface{}{
		"id":              user.ID,
		"last_scraped_at": user.LastScrapedAt,
		"created_at":      user.CreatedAt,
		"updated_at":      user.UpdatedAt,
	}

	if total, enriched, err := h.recordRepo.GetRecordStats(user.ID); err == nil {
		details["records"] = map[string]interface{}{
			"total":    total,
			"enriched": enriched,
		}
	}

	c.JSON(http.StatusOK, details)
}

func (h *Handler) APIGetUserRecords(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing user name parameter"})
		return
	}

	user, err := h.userRepo.GetUserByName(name)
	if err != nil {
		slog.Error("Database error", "operation", "get_user", "user", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found in database"})
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	records, err := h.recordRepo.GetRecentRecords(user.ID, limit)
	if err != nil {
		slog.Error("Database error", "operation", "get_records", "user", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	out := make([]map[string]interface{}, 0, len(records))
	for _, rec := range records {
		out = append(out, map[string]interface{}{
			"source":            rec.Source,
			"native_id":         rec.NativeID,
			"author_name":       rec.AuthorName,
			"author_handle":     rec.AuthorHandle,
			"text":              rec.Text,
			"lang":              rec.Lang,
			"url":               rec.URL,
			"media_url":         rec.MediaURL,
			"profile_image_url": rec.ProfileImageURL,
			"likes":             rec.Likes,
			"replies":           rec.Replies,
			"reposts":           rec.Reposts,
			"quotes":            rec.Quotes,
			"posted_at":         rec.PostedAt,
			"title":             rec.Title,
			"summary":           rec.Summary,
			"enriched_at":       rec.EnrichedAt,
		})
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"records": out,
		"total":   len(out),
	})
}

func (h *Handler) APIIngestUser(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing user name parameter"})
		return
	}

	_, err := h.configCache.GetConfig(name)
	if err != nil {
		slog.Error("User configuration not found", "user", name, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "User configuration not found"})
		return
	}

	user, err := h.userRepo.GetUserByName(name)
	if err != nil {
		slog.Error("Database error", "operation", "get_user", "user", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found in database"})
		return
	}

	userConfig, err := h.configCache.LoadConfig(name)
	if err != nil {
		slog.Error("Error reloading configuration", "user", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to reload configuration",
			"details": err.Error(),
		})
		return
	}

	syncTask := tasks.NewSyncUserConfigTask(name, userConfig, h.userRepo)
	err = h.scheduler.EnqueueTask(syncTask)
	if err != nil {
		slog.Error("Error enqueueing sync task", "user", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue sync task",
			"details": err.Error(),
		})
		return
	}

	ingestTask := tasks.NewIngestUserTask(name, user.ID, userConfig, h.pipeline, h.sources, h.userRepo)
	err = h.scheduler.EnqueueTask(ingestTask)
	if err != nil {
		slog.Error("Error enqueueing ingest task", "user", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue ingest task",
			"details": err.Error(),
		})
		return
	}

	response := gin.H{
		"success": true,
		"message": "Configuration reloaded and ingestion enqueued successfully",
		"user": gin.H{
			"name":  name,
			"email": userConfig.Email,
		},
		"tasks": []gin.H{
			{
				"id":   syncTask.ID,
				"type": syncTask.Type,
			},
			{
				"id":   ingestTask.ID,
				"type": ingestTask.Type,
			},
		},
	}

	c.JSON(http.StatusAccepted, response)
}
