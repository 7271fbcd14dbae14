package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/ledstudio/matrixpaint/pattern"
)

// Api serves a read-only preview of a pattern over HTTP for the editor
// front end: pattern metadata and composited frames as hex pixel rows.
type Api struct {
	pattern *pattern.Pattern
}

// NewApi creates an Api over the given pattern.
func NewApi(p *pattern.Pattern) *Api {
	a := new(Api)
	a.pattern = p
	return a
}

type layerInfo struct {
	Name     string  `json:"name"`
	EndFrame int     `json:"endFrame"`
	Visible  bool    `json:"visible"`
	Opacity  float64 `json:"opacity"`
	Locked   bool    `json:"locked"`
}

type patternInfo struct {
	Width      int         `json:"width"`
	Height     int         `json:"height"`
	FrameCount int         `json:"frameCount"`
	Active     int         `json:"activeLayer"`
	Layers     []layerInfo `json:"layers"`
}

type frameInfo struct {
	Index    int      `json:"index"`
	Duration int      `json:"duration"`
	Rows     []string `json:"rows"`
}

func (a *Api) handlePattern(w http.ResponseWriter, _ *http.Request) {
	info := patternInfo{
		Width:      a.pattern.Width(),
		Height:     a.pattern.Height(),
		FrameCount: a.pattern.FrameCount(),
		Active:     a.pattern.Manager().ActiveIndex(),
	}
	for _, l := range a.pattern.Manager().Layers() {
		info.Layers = append(info.Layers, layerInfo{
			Name:     l.Name(),
			EndFrame: l.EndFrame(),
			Visible:  l.Visible,
			Opacity:  l.Opacity,
			Locked:   l.Locked,
		})
	}
	writeJSON(w, info)
}

func (a *Api) handleFrame(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.URL.Query().Get("index"))
	if err != nil {
		http.Error(w, "bad index", http.StatusBadRequest)
		return
	}
	f, err := a.pattern.CompositedFrame(index)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	buf := f.Buffer()
	info := frameInfo{Index: index, Duration: f.Duration()}
	for y := 0; y < buf.Height(); y++ {
		row := ""
		for x := 0; x < buf.Width(); x++ {
			px, _ := buf.At(x, y)
			row += fmt.Sprintf("%02x%02x%02x", px.R, px.G, px.B)
		}
		info.Rows = append(info.Rows, row)
	}
	writeJSON(w, info)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

// Serve blocks serving the preview API on the given address.
func (a *Api) Serve(addr string) {
	http.HandleFunc("/pattern", a.handlePattern)
	http.HandleFunc("/frame", a.handleFrame)

	log.Println("Listening...")
	http.ListenAndServe(addr, nil)
}
