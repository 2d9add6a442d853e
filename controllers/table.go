package controllers

import (
	game_constants "Vega/constants/game"
	models "Vega/models/postgres"
	"Vega/services/table"
	"log"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TableController serves the blackjack table registry. The live round
// state lives in Redis behind the table manager; Postgres only keeps
// the registry rows.
type TableController struct {
	DB      *gorm.DB
	Manager *table.Manager
}

// @Summary Create a blackjack table
// @Description Creates a registry row and starts the table's round engine
// @Tags tables
// @Produce json
// @Success 201 {object} object{table_id=string,minimum_wager=number}
// @Failure 401 {object} object{error=string}
// @Router /auth/tables [post]
// @Security ApiKeyAuth
func (tc *TableController) CreateTable(c *gin.Context) {
	session := sessions.Default(c)
	email, _ := session.Get("Email").(string)

	var user models.User
	if err := tc.DB.Where("email = ?", email).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found: invalid email"})
		return
	}

	gameTable := models.GameTable{
		CreatorUsername: user.Username,
		MinimumWager:    game_constants.MinimumWager,
	}
	if err := tc.DB.Create(&gameTable).Error; err != nil {
		log.Printf("[TABLE-ERROR] Error creating table: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating table"})
		return
	}

	// Seed the Redis document and start ticking right away
	if _, err := tc.Manager.EnsureTable(gameTable.ID); err != nil {
		log.Printf("[TABLE-ERROR] Error starting engine for table %s: %v", gameTable.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error starting table"})
		return
	}

	log.Printf("[TABLE-CREATE] %s created table %s", user.Username, gameTable.ID)
	c.JSON(http.StatusCreated, gin.H{
		"table_id":      gameTable.ID,
		"minimum_wager": gameTable.MinimumWager,
	})
}

// @Summary List all blackjack tables
// @Description Returns every registered table with its creator and rounds played
// @Tags tables
// @Produce json
// @Success 200 {array} object{table_id=string,creator=string,rounds_played=integer}
// @Failure 500 {object} object{error=string}
// @Router /tables [get]
func (tc *TableController) GetAllTables(c *gin.Context) {
	var tables []models.GameTable
	if err := tc.DB.Find(&tables).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching tables"})
		return
	}

	list := make([]gin.H, 0, len(tables))
	for _, t := range tables {
		list = append(list, gin.H{
			"table_id":      t.ID,
			"creator":       t.CreatorUsername,
			"minimum_wager": t.MinimumWager,
			"rounds_played": t.RoundsPlayed,
		})
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Get a table's live state
// @Description Returns the current round snapshot (hole card and deck concealed)
// @Tags tables
// @Produce json
// @Param table_id path string true "Table id"
// @Success 200 {object} object{table_id=string,phase=string}
// @Failure 404 {object} object{error=string}
// @Router /tables/{table_id} [get]
func (tc *TableController) GetTableInfo(c *gin.Context) {
	tableId := c.Param("table_id")

	var gameTable models.GameTable
	if err := tc.DB.Where("id = ?", tableId).First(&gameTable).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Table not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching table"})
		return
	}

	state, err := tc.Manager.EnsureTable(tableId)
	if err != nil {
		log.Printf("[TABLE-ERROR] Error reading state for table %s: %v", tableId, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error reading table state"})
		return
	}

	snapshot := table.Snapshot(state)
	snapshot["creator"] = gameTable.CreatorUsername
	snapshot["minimum_wager"] = gameTable.MinimumWager
	snapshot["rounds_played"] = gameTable.RoundsPlayed
	c.JSON(http.StatusOK, snapshot)
}
