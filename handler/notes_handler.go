package handler

import (
	"errors"
	"log"

	"main/dto"
	"main/repository"
	"main/usecase"
	"main/utils"

	"github.com/gin-gonic/gin"
)

func GetUserNotesHandler(c *gin.Context, notesService *usecase.NotesService) {
	notes, err := notesService.GetUserNotes(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		respondNoteError(c, err)
		return
	}
	utils.Success(c, notes)
}

func GetNoteHandler(c *gin.Context, notesService *usecase.NotesService) {
	note, err := notesService.GetNote(c.Request.Context(), c.Param("id"), c.GetString("userID"))
	if err != nil {
		respondNoteError(c, err)
		return
	}
	utils.Success(c, note)
}

func CreateNoteHandler(c *gin.Context, notesService *usecase.NotesService) {
	var req dto.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request body")
		return
	}

	note, err := notesService.CreateNote(c.Request.Context(), c.GetString("userID"), &req)
	if err != nil {
		respondNoteError(c, err)
		return
	}
	utils.Created(c, "Note created successfully", note)
}

func UpdateNoteHandler(c *gin.Context, notesService *usecase.NotesService) {
	var req dto.UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request body")
		return
	}

	note, err := notesService.UpdateNote(c.Request.Context(), c.Param("id"), c.GetString("userID"), &req)
	if err != nil {
		respondNoteError(c, err)
		return
	}
	utils.SuccessMessage(c, "Note updated successfully", note)
}

func TogglePinHandler(c *gin.Context, notesService *usecase.NotesService) {
	note, err := notesService.TogglePin(c.Request.Context(), c.Param("id"), c.GetString("userID"))
	if err != nil {
		respondNoteError(c, err)
		return
	}
	utils.SuccessMessage(c, "Note pin status updated", note)
}

func DeleteNoteHandler(c *gin.Context, notesService *usecase.NotesService) {
	note, err := notesService.DeleteNote(c.Request.Context(), c.Param("id"), c.GetString("userID"))
	if err != nil {
		respondNoteError(c, err)
		return
	}
	utils.SuccessMessage(c, "Note deleted successfully", note)
}

func SearchNotesHandler(c *gin.Context, notesService *usecase.NotesService) {
	notes, err := notesService.SearchNotes(c.Request.Context(), c.GetString("userID"), c.Param("term"))
	if err != nil {
		respondNoteError(c, err)
		return
	}
	utils.Success(c, notes)
}

func GetNotesByCategoryHandler(c *gin.Context, notesService *usecase.NotesService) {
	notes, err := notesService.GetNotesByCategory(c.Request.Context(), c.GetString("userID"), c.Param("category"))
	if err != nil {
		respondNoteError(c, err)
		return
	}
	utils.Success(c, notes)
}

// respondNoteError classifies a service fault before it reaches the
// boundary. Absent and not-owned notes are indistinguishable on purpose.
func respondNoteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrValidation):
		utils.BadRequest(c, err.Error())
	case errors.Is(err, repository.ErrNoteNotFound):
		utils.NotFound(c, "Note not found")
	default:
		log.Printf("notes handler error: %v", err)
		utils.InternalError(c, err.Error())
	}
}
