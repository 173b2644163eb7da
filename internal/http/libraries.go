package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/wordbook/internal/entities"
	"github.com/mrlokans/wordbook/internal/registry"
	"github.com/mrlokans/wordbook/internal/settingsstore"
	"github.com/mrlokans/wordbook/internal/wordlib"
)

// maxImportSize bounds the body accepted by Import.
const maxImportSize = 32 << 20

// Import modes accepted in the ?mode= query parameter.
const (
	importModeReplace = "replace"
	importModeMerge   = "merge"
)

type LibrariesController struct {
	registry LibraryRegistry
	prefs    PreferenceInfo
	autosave Autosave
}

// NewLibrariesController creates the controller. prefs and autosave may be nil.
func NewLibrariesController(registry LibraryRegistry, prefs PreferenceInfo, autosave Autosave) *LibrariesController {
	return &LibrariesController{registry: registry, prefs: prefs, autosave: autosave}
}

type LibrariesResponse struct {
	Libraries []string `json:"libraries"`
	Current   any      `json:"current"`
}

// LibraryResponse describes one library. Size counts every entry, while
// Entries is narrowed by the optional category filter.
type LibraryResponse struct {
	Name       string                    `json:"name"`
	Size       int                       `json:"size"`
	Categories map[entities.Category]int `json:"categories"`
	Entries    []entities.Entry          `json:"entries"`
}

type CurrentResponse struct {
	registry.Selection
	Preference *settingsstore.CurrentWordLibInfo `json:"preference,omitempty"`
}

type TermsResponse struct {
	Name  string   `json:"name"`
	Terms []string `json:"terms"`
}

type NameRequest struct {
	Name string `json:"name" binding:"required"`
}

type WordRequest struct {
	Definition string   `json:"definition"`
	Example    string   `json:"example"`
	Categories []string `json:"categories"`
}

// List returns all known libraries and the current selection.
// GET /api/libraries
func (lc *LibrariesController) List(c *gin.Context) {
	c.JSON(http.StatusOK, LibrariesResponse{
		Libraries: lc.registry.Names(),
		Current:   lc.registry.Current(),
	})
}

// Create adds a library.
// POST /api/libraries
func (lc *LibrariesController) Create(c *gin.Context) {
	var req NameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name is required")
		return
	}

	if err := lc.registry.Create(req.Name); err != nil {
		respondError(c, err, "create library")
		return
	}

	respondCreated(c, gin.H{"name": req.Name})
}

// GetCurrent returns the resolved selection and where the stored
// preference comes from.
// GET /api/libraries/current
func (lc *LibrariesController) GetCurrent(c *gin.Context) {
	c.JSON(http.StatusOK, lc.currentResponse())
}

// ClearCurrent forgets the stored selection.
// DELETE /api/libraries/current
func (lc *LibrariesController) ClearCurrent(c *gin.Context) {
	if err := lc.registry.ClearSelection(); err != nil {
		respondError(c, err, "clear current library")
		return
	}
	c.JSON(http.StatusOK, lc.currentResponse())
}

func (lc *LibrariesController) currentResponse() CurrentResponse {
	resp := CurrentResponse{Selection: lc.registry.Current()}
	if lc.prefs != nil {
		info := lc.prefs.CurrentWordLibInfo()
		resp.Preference = &info
	}
	return resp
}

// SaveAll writes every changed library. With autosave configured the save
// runs in the background and the request is accepted.
// POST /api/libraries/save-all
func (lc *LibrariesController) SaveAll(c *gin.Context) {
	if lc.autosave != nil {
		lc.autosave.RunNow()
		respondAccepted(c, "save started")
		return
	}

	saved := lc.registry.SaveAll()
	c.JSON(http.StatusOK, SuccessResponse{
		Message: "libraries saved",
		Data:    gin.H{"saved": saved},
	})
}

// SelectCurrent persists the current library.
// PUT /api/libraries/current
func (lc *LibrariesController) SelectCurrent(c *gin.Context) {
	var req NameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name is required")
		return
	}

	if err := lc.registry.Select(req.Name); err != nil {
		respondError(c, err, "select library")
		return
	}

	c.JSON(http.StatusOK, lc.registry.Current())
}

// Get returns the entries of a library in term order with per-category
// counts. ?category= narrows the entries to one category.
// GET /api/libraries/:name
func (lc *LibrariesController) Get(c *gin.Context) {
	var filter entities.Category
	if raw := c.Query("category"); raw != "" {
		category, err := entities.ParseCategory(raw)
		if err != nil {
			respondBadRequest(c, err.Error())
			return
		}
		filter = category
	}

	name, lib, ok := lc.open(c)
	if !ok {
		return
	}

	var entries []entities.Entry
	if filter != "" {
		entries = lib.ByCategory(filter)
	} else {
		entries = lib.Entries()
	}
	c.JSON(http.StatusOK, LibraryResponse{
		Name:       name,
		Size:       lib.Size(),
		Categories: lib.CategoryCounts(),
		Entries:    entries,
	})
}

// Terms returns the terms of a library in ascending order.
// GET /api/libraries/:name/terms
func (lc *LibrariesController) Terms(c *gin.Context) {
	name, lib, ok := lc.open(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, TermsResponse{Name: name, Terms: lib.Terms()})
}

// Save writes a library to disk.
// POST /api/libraries/:name/save
func (lc *LibrariesController) Save(c *gin.Context) {
	name, ok := parseRequiredParam(c, "name")
	if !ok {
		return
	}

	if err := lc.registry.Commit(name); err != nil {
		respondError(c, err, "save library")
		return
	}

	respondSuccess(c, "library saved")
}

// Export returns the serialized library.
// GET /api/libraries/:name/export
func (lc *LibrariesController) Export(c *gin.Context) {
	name, lib, ok := lc.open(c)
	if !ok {
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+name+`.dat"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(lib.Serialize()))
}

// Import loads serialized text from the request body. The default mode
// replaces the library; ?mode=merge only adds terms it does not have yet.
// PUT /api/libraries/:name/import
func (lc *LibrariesController) Import(c *gin.Context) {
	name, ok := parseRequiredParam(c, "name")
	if !ok {
		return
	}

	mode := c.DefaultQuery("mode", importModeReplace)
	if mode != importModeReplace && mode != importModeMerge {
		respondBadRequest(c, "mode must be replace or merge")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxImportSize))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "library too large"})
			return
		}
		respondBadRequest(c, "failed to read request body")
		return
	}

	if mode == importModeMerge {
		added, err := lc.registry.Merge(name, string(body))
		if err != nil {
			respondError(c, err, "merge library")
			return
		}
		c.JSON(http.StatusOK, SuccessResponse{
			Message: "library merged",
			Data:    gin.H{"name": name, "added": added},
		})
		return
	}

	count, err := lc.registry.Replace(name, string(body))
	if err != nil {
		respondError(c, err, "import library")
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "library imported",
		Data:    gin.H{"name": name, "entries": count},
	})
}

// GetWord looks up a single term.
// GET /api/libraries/:name/words/:term
func (lc *LibrariesController) GetWord(c *gin.Context) {
	_, lib, ok := lc.open(c)
	if !ok {
		return
	}

	entry, found := lib.Lookup(c.Param("term"))
	if !found {
		respondNotFound(c, "word")
		return
	}
	c.JSON(http.StatusOK, entry)
}

// PutWord inserts or overwrites a term. It answers 201 when the term is
// new and 200 when it replaced an entry.
// PUT /api/libraries/:name/words/:term
func (lc *LibrariesController) PutWord(c *gin.Context) {
	_, lib, ok := lc.open(c)
	if !ok {
		return
	}

	var req WordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	entry := entities.Entry{
		Term:       c.Param("term"),
		Definition: req.Definition,
		Example:    req.Example,
	}
	for _, name := range req.Categories {
		category, err := entities.ParseCategory(name)
		if err != nil {
			respondBadRequest(c, err.Error())
			return
		}
		entry.Categories = append(entry.Categories, category)
	}

	existed := lib.Contains(entry.Term)
	if err := lib.Put(entry); err != nil {
		respondError(c, err, "put word")
		return
	}

	stored, _ := lib.Lookup(entry.Term)
	if !existed {
		respondCreated(c, stored)
		return
	}
	c.JSON(http.StatusOK, stored)
}

// DeleteWord removes a term. Removing an absent term succeeds.
// DELETE /api/libraries/:name/words/:term
func (lc *LibrariesController) DeleteWord(c *gin.Context) {
	_, lib, ok := lc.open(c)
	if !ok {
		return
	}

	lib.Remove(c.Param("term"))
	c.Status(http.StatusNoContent)
}

// Clear removes every word from a library.
// DELETE /api/libraries/:name/words
func (lc *LibrariesController) Clear(c *gin.Context) {
	_, lib, ok := lc.open(c)
	if !ok {
		return
	}

	lib.Clear()
	c.Status(http.StatusNoContent)
}

// open resolves the :name parameter to a loaded library or writes an
// error response.
func (lc *LibrariesController) open(c *gin.Context) (string, *wordlib.WordLib, bool) {
	name, ok := parseRequiredParam(c, "name")
	if !ok {
		return "", nil, false
	}

	lib, err := lc.registry.Open(name)
	if err != nil {
		respondError(c, err, "open library")
		return "", nil, false
	}
	return name, lib, true
}
