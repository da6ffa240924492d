package order

import (
	"context"
	"encoding/hex"
	"io"
	"mime"
	"path"
	"path/filepath"
	"strings"

	"equipment-backend/internal/apperror"
	"equipment-backend/internal/auth"
	"equipment-backend/internal/logging"
	"equipment-backend/internal/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

var attachmentMimeTypes = map[string]string{
	"application/pdf":          ".pdf",
	"application/msword":       ".doc",
	"application/vnd.ms-excel": ".xls",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":       ".xlsx",
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Upload: handler'ın multipart dosyadan çıkardığı bilgiler
type Upload struct {
	FileName    string
	Size        int64
	ContentType string
	Body        io.Reader
}

// UploadAttachment: sipariş var olmalı, boyut ve tip kontrol edilir, dosya blake2b özetiyle saklanır
func (s *Service) UploadAttachment(ctx context.Context, actor auth.Principal, orderID uuid.UUID, up Upload, maxBytes int64) (*models.OrderAttachment, error) {
	if up.Body == nil || up.Size <= 0 {
		return nil, apperror.Validation("No file uploaded")
	}
	if maxBytes > 0 && up.Size > maxBytes {
		return nil, apperror.Validation("File size exceeds %dMB limit", maxBytes/(1024*1024))
	}
	mimeType, _, err := mime.ParseMediaType(up.ContentType)
	if err != nil {
		return nil, apperror.Validation("Unsupported file type")
	}
	defaultExt, ok := attachmentMimeTypes[mimeType]
	if !ok {
		return nil, apperror.Validation("Unsupported file type: %s", mimeType)
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", orderID).Count(&count).Error; err != nil {
		return nil, apperror.FromDB(err, "Failed to upload attachment")
	}
	if count == 0 {
		return nil, apperror.NotFound("Order not found")
	}

	fileName := filepath.Base(strings.ReplaceAll(up.FileName, "\\", "/"))
	if fileName == "." || fileName == "/" || fileName == "" {
		fileName = "attachment" + defaultExt
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == "" {
		ext = defaultExt
	}
	key := path.Join("orders", orderID.String(), uuid.NewString()+ext)

	hasher, err := blake2b.New256(nil)
	if err != nil {
		return nil, apperror.Storage("Failed to upload attachment", err)
	}
	counter := &countingReader{r: io.TeeReader(up.Body, hasher)}
	if err := s.store.Put(ctx, key, counter, mimeType); err != nil {
		return nil, apperror.Storage("Failed to store attachment", err)
	}

	att := models.OrderAttachment{
		OrderID:    orderID,
		FileName:   fileName,
		FilePath:   key,
		FileSize:   counter.n,
		FileType:   mimeType,
		Checksum:   hex.EncodeToString(hasher.Sum(nil)),
		UploadedBy: actor.ID,
	}
	if err := s.db.WithContext(ctx).Create(&att).Error; err != nil {
		// kayıt yazılamadıysa dosya yetim kalmasın
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			logging.LogError("order", "UploadAttachment", "cleanup", key, delErr)
		}
		return nil, apperror.FromDB(err, "Failed to upload attachment")
	}
	att.FileURL = s.store.URL(att.FilePath)
	return &att, nil
}

// Attachments: siparişin ekleri, en yeni önce
func (s *Service) Attachments(ctx context.Context, orderID uuid.UUID) ([]models.OrderAttachment, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", orderID).Count(&count).Error; err != nil {
		return nil, apperror.FromDB(err, "Failed to fetch attachments")
	}
	if count == 0 {
		return nil, apperror.NotFound("Order not found")
	}

	list := []models.OrderAttachment{}
	err := s.db.WithContext(ctx).Where("order_id = ?", orderID).Order("created_at DESC").Find(&list).Error
	if err != nil {
		return nil, apperror.FromDB(err, "Failed to fetch attachments")
	}
	for i := range list {
		list[i].FileURL = s.store.URL(list[i].FilePath)
	}
	return list, nil
}

// DeleteAttachment: önce dosya, sonra kayıt. Dosyanın zaten olmaması hata değildir.
func (s *Service) DeleteAttachment(ctx context.Context, id uuid.UUID) error {
	var att models.OrderAttachment
	if err := s.db.WithContext(ctx).First(&att, "id = ?", id).Error; err != nil {
		return apperror.FromDB(err, "Attachment not found")
	}
	if err := s.store.Delete(ctx, att.FilePath); err != nil {
		return apperror.Storage("Failed to delete attachment file", err)
	}
	if err := s.db.WithContext(ctx).Delete(&models.OrderAttachment{}, "id = ?", id).Error; err != nil {
		return apperror.FromDB(err, "Failed to delete attachment")
	}
	return nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
