package emails

import (
	"mime/multipart"

	"github.com/gin-gonic/gin"

	"github.com/customeros/maildesk/internal/models"
)

const attachmentsField = "attachments"

// openUploads opens every file posted under the attachments field. The returned
// closer must be called once the uploads have been consumed.
func (h *EmailsHandler) openUploads(c *gin.Context) ([]models.Upload, func(), error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, func() {}, err
	}

	var (
		uploads []models.Upload
		files   []multipart.File
	)
	closeAll := func() {
		for _, f := range files {
			_ = f.Close()
		}
	}

	for _, header := range form.File[attachmentsField] {
		if header.Filename == "" {
			continue
		}
		file, err := header.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		files = append(files, file)
		uploads = append(uploads, models.Upload{
			Filename: header.Filename,
			Content:  file,
		})
	}

	return uploads, closeAll, nil
}
