package controller

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"

	"github.com/hqanh/scoresheet/config"
	"github.com/hqanh/scoresheet/internal/dto"
	"github.com/hqanh/scoresheet/internal/model"
	"github.com/hqanh/scoresheet/internal/service"
	"github.com/hqanh/scoresheet/internal/store"
)

type Controller struct {
	cfg           *config.Config
	records       *store.Store
	normalizerSvc service.NormalizerService
	extractionSvc service.ExtractionService
}

func NewController(
	cfg *config.Config,
	records *store.Store,
	normalizerSvc service.NormalizerService,
	extractionSvc service.ExtractionService,
) *Controller {
	return &Controller{
		cfg:           cfg,
		records:       records,
		normalizerSvc: normalizerSvc,
		extractionSvc: extractionSvc,
	}
}

func (ctrl *Controller) RegisterRoutes(router *gin.Engine) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.MessageResponse{Message: "ok"})
	})

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/login", ctrl.LoginHandler)
		apiV1.POST("/logout", ctrl.LogoutHandler)

		exams := apiV1.Group("/exams")
		exams.GET("", ctrl.ListExamsHandler)
		exams.POST("", AuthAdmin, ctrl.CreateExamHandler)
		exams.DELETE("/:id", AuthAdmin, ctrl.DeleteExamHandler)

		students := apiV1.Group("/students")
		students.GET("", ctrl.ListStudentsHandler)
		students.GET("/search", ctrl.SearchStudentHandler)
		students.GET("/:id", ctrl.GetStudentHandler)
		students.POST("", AuthAdmin, ctrl.CreateStudentHandler)
		students.PUT("/:id", AuthAdmin, ctrl.UpdateStudentHandler)
		students.DELETE("/:id", AuthAdmin, ctrl.DeleteStudentHandler)

		apiV1.POST("/extract", AuthAdmin, ctrl.ExtractSheetHandler)
	}
}

func studentResponse(st model.Student) dto.StudentResponse {
	var resp dto.StudentResponse
	copier.Copy(&resp, &st)
	return resp
}

// --- Exam handlers ---

// CreateExamHandler godoc
// @Summary Create an exam folder
// @Description Creates a new exam folder that student records can be filed under
// @Tags exams
// @Accept json
// @Produce json
// @Param exam body dto.CreateExamRequest true "Exam name"
// @Success 201 {object} dto.ExamResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 500 {object} dto.ErrorResponse "Snapshot write failed"
// @Router /exams [post]
func (ctrl *Controller) CreateExamHandler(c *gin.Context) {
	var req dto.CreateExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Failed to bind CreateExamRequest")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	exam, err := ctrl.records.AddExam(c.Request.Context(), req.Name)
	if err != nil {
		log.Error().Err(err).Str("name", req.Name).Msg("Failed to create exam")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create exam: " + err.Error()})
		return
	}

	var resp dto.ExamResponse
	copier.Copy(&resp, &exam)
	c.JSON(http.StatusCreated, resp)
}

// ListExamsHandler godoc
// @Summary List exam folders
// @Tags exams
// @Produce json
// @Success 200 {array} dto.ExamResponse
// @Router /exams [get]
func (ctrl *Controller) ListExamsHandler(c *gin.Context) {
	exams := ctrl.records.ListExams()
	resp := make([]dto.ExamResponse, 0, len(exams))
	for _, exam := range exams {
		var e dto.ExamResponse
		copier.Copy(&e, &exam)
		resp = append(resp, e)
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteExamHandler godoc
// @Summary Delete an exam folder
// @Description Deletes the exam and every student record filed under its name
// @Tags exams
// @Param id path string true "Exam ID"
// @Success 204 "No Content"
// @Failure 404 {object} dto.ErrorResponse "Exam not found"
// @Failure 500 {object} dto.ErrorResponse "Snapshot write failed"
// @Router /exams/{id} [delete]
func (ctrl *Controller) DeleteExamHandler(c *gin.Context) {
	id := c.Param("id")
	err := ctrl.records.DeleteExam(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Exam not found"})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("Failed to delete exam")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to delete exam: " + err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Student handlers ---

// CreateStudentHandler godoc
// @Summary Create a student record
// @Description Normalizes the submitted record (missing fields default, marks coerce) and stores it
// @Tags students
// @Accept json
// @Produce json
// @Param student body dto.StudentInput true "Partial student record"
// @Success 201 {object} dto.StudentResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 500 {object} dto.ErrorResponse "Snapshot write failed"
// @Router /students [post]
func (ctrl *Controller) CreateStudentHandler(c *gin.Context) {
	var req dto.StudentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Failed to bind StudentInput")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	st := ctrl.normalizerSvc.Normalize(req)
	st, err := ctrl.records.AddStudent(c.Request.Context(), st)
	if err != nil {
		log.Error().Err(err).Msg("Failed to store student")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to store student: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, studentResponse(st))
}

// UpdateStudentHandler godoc
// @Summary Update a student record
// @Description Re-normalizes the submitted record and replaces the stored one; derived fields are recomputed
// @Tags students
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param student body dto.StudentInput true "Partial student record"
// @Success 200 {object} dto.StudentResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 500 {object} dto.ErrorResponse "Snapshot write failed"
// @Router /students/{id} [put]
func (ctrl *Controller) UpdateStudentHandler(c *gin.Context) {
	id := c.Param("id")
	var req dto.StudentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	req.ID = id
	st := ctrl.normalizerSvc.Normalize(req)
	st, err := ctrl.records.UpdateStudent(c.Request.Context(), id, st)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Student not found"})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("Failed to update student")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to update student: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, studentResponse(st))
}

// DeleteStudentHandler godoc
// @Summary Delete a student record
// @Tags students
// @Param id path string true "Student ID"
// @Success 204 "No Content"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 500 {object} dto.ErrorResponse "Snapshot write failed"
// @Router /students/{id} [delete]
func (ctrl *Controller) DeleteStudentHandler(c *gin.Context) {
	id := c.Param("id")
	err := ctrl.records.DeleteStudent(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Student not found"})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("Failed to delete student")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to delete student: " + err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// GetStudentHandler godoc
// @Summary Get a student record by ID
// @Tags students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} dto.StudentResponse
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id} [get]
func (ctrl *Controller) GetStudentHandler(c *gin.Context) {
	st, err := ctrl.records.GetStudent(c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Student not found"})
		return
	}
	c.JSON(http.StatusOK, studentResponse(st))
}

// ListStudentsHandler godoc
// @Summary List students in an exam folder
// @Tags students
// @Produce json
// @Param exam query string true "Exam name"
// @Success 200 {array} dto.StudentResponse
// @Failure 400 {object} dto.ErrorResponse "Missing exam query parameter"
// @Router /students [get]
func (ctrl *Controller) ListStudentsHandler(c *gin.Context) {
	examName := c.Query("exam")
	if examName == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Query parameter 'exam' is required"})
		return
	}

	students := ctrl.records.ListByExam(examName)
	resp := make([]dto.StudentResponse, 0, len(students))
	for _, st := range students {
		resp = append(resp, studentResponse(st))
	}
	c.JSON(http.StatusOK, resp)
}

// SearchStudentHandler godoc
// @Summary Find one student by roll number within an exam
// @Description Roll number matching is whitespace-trimmed and case-insensitive; exam name is exact
// @Tags students
// @Produce json
// @Param roll_no query string true "Roll number"
// @Param exam query string true "Exam name"
// @Success 200 {object} dto.StudentResponse
// @Failure 400 {object} dto.ErrorResponse "Missing query parameters"
// @Failure 404 {object} dto.ErrorResponse "No matching record"
// @Router /students/search [get]
func (ctrl *Controller) SearchStudentHandler(c *gin.Context) {
	rollNo := c.Query("roll_no")
	examName := c.Query("exam")
	if rollNo == "" || examName == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Query parameters 'roll_no' and 'exam' are required"})
		return
	}

	st, err := ctrl.records.FindByRollAndExam(rollNo, examName)
	if errors.Is(err, store.ErrNotFound) {
		// A miss is a normal negative result, not a failure.
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "No matching record"})
		return
	}
	c.JSON(http.StatusOK, studentResponse(st))
}

// --- Extraction handler ---

// ExtractSheetHandler godoc
// @Summary Extract a candidate record from a photographed answer sheet
// @Description Submits the image to the AI extraction capability and returns the normalized candidate record. Nothing is written to the store; the operator reviews the candidate and saves it through POST /students.
// @Tags extraction
// @Accept mpfd
// @Produce json
// @Param sheet formData file true "Answer sheet photo (JPEG or PNG)"
// @Param exam_name formData string false "Exam folder context; overrides the exam label on the sheet"
// @Success 200 {object} dto.ExtractionResponse
// @Failure 400 {object} dto.ErrorResponse "Missing or unreadable image"
// @Failure 502 {object} dto.ErrorResponse "Extraction failed; retake the photo and retry"
// @Router /extract [post]
func (ctrl *Controller) ExtractSheetHandler(c *gin.Context) {
	file, _, err := c.Request.FormFile("sheet")
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Form file 'sheet' is required"})
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Failed to read uploaded image"})
		return
	}

	examName := c.PostForm("exam_name")
	partial, err := ctrl.extractionSvc.ExtractSheet(c.Request.Context(), image, examName)
	if err != nil {
		log.Error().Err(err).Msg("Sheet extraction failed")
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: err.Error()})
		return
	}

	candidate := ctrl.normalizerSvc.Normalize(*partial)
	c.JSON(http.StatusOK, dto.ExtractionResponse{Candidate: studentResponse(candidate)})
}
