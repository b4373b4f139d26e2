package server

import (
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/NYTimes/gziphandler"
	"github.com/gin-gonic/gin"
	"github.com/segmentio/fasthash/fnv1a"

	"github.com/lugehorsam/postfix-spreadsheet/internal/grid"
	"github.com/lugehorsam/postfix-spreadsheet/internal/render"
)

const maxBodyBytes = 4 << 20

// CellResponse describes one evaluated cell.
type CellResponse struct {
	Cell  string `json:"cell"`
	Raw   string `json:"raw"`
	Value string `json:"value"`
	Error string `json:"error,omitempty"`
}

type SheetResponse struct {
	Rows [][]CellResponse `json:"rows"`
}

type Controller struct {
	Options render.Options
}

func NewController(opts render.Options) *Controller {
	return &Controller{Options: opts}
}

func SetupRouter(controller *Controller) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	router.POST("/render", controller.RenderAction)
	router.POST("/evaluate", controller.EvaluateAction)
	router.GET("/healthcheck", func(c *gin.Context) {
		c.String(http.StatusOK, "health")
	})

	return router
}

// ListenAndServe serves the router with gzip compression until the server fails.
func ListenAndServe(addr string, opts render.Options) error {
	gin.SetMode(gin.ReleaseMode)
	router := SetupRouter(NewController(opts))

	log.Printf("listening on %s", addr)
	return http.ListenAndServe(addr, gziphandler.GzipHandler(router))
}

// RenderAction renders the CSV request body as text.
func (api *Controller) RenderAction(c *gin.Context) {
	g, opts, ok := api.readSheet(c)
	if !ok {
		return
	}

	text := render.Render(g, opts)
	etag := strconv.Quote(strconv.FormatUint(fnv1a.HashString64(text), 16))
	c.Header("ETag", etag)
	if c.GetHeader("If-None-Match") == etag {
		c.Status(http.StatusNotModified)
		return
	}
	c.String(http.StatusOK, text)
}

// EvaluateAction returns every cell with its raw content and rendered value.
func (api *Controller) EvaluateAction(c *gin.Context) {
	g, opts, ok := api.readSheet(c)
	if !ok {
		return
	}

	results := render.Evaluate(g, opts)
	response := SheetResponse{Rows: make([][]CellResponse, len(results))}
	for r, row := range results {
		response.Rows[r] = make([]CellResponse, len(row))
		for col, res := range row {
			cell, _ := g.At(r, col)
			cr := CellResponse{
				Cell:  cell.Name(),
				Raw:   cell.Text,
				Value: render.Format(res, opts),
			}
			if res.Err != nil {
				cr.Error = res.Err.Error()
			}
			response.Rows[r][col] = cr
		}
	}
	c.JSON(http.StatusOK, response)
}

// readSheet builds the grid from the body and applies the optional precision
// query parameter. It writes the error response itself.
func (api *Controller) readSheet(c *gin.Context) (*grid.Grid, render.Options, bool) {
	opts := api.Options
	if p := c.Query("precision"); p != "" {
		precision, err := strconv.Atoi(p)
		if err != nil || precision < 0 || precision > 15 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid precision: " + p})
			return nil, opts, false
		}
		opts.Precision = precision
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
		return nil, opts, false
	}
	return grid.Build(string(body)), opts, true
}
