package handler

import (
	"net/http"

	"teamchat/internal/pkg/errs"
	"teamchat/internal/pkg/req"
	"teamchat/internal/pkg/resp"
)

type uploadURLRequest struct {
	FileName string `json:"file_name"`
	FileType string `json:"file_type"`
	FileSize int64  `json:"file_size"`
}

// HandleUploadURL issues a presigned PUT URL for an attachment.
func HandleUploadURL(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if requireIdentity(w, r) == nil {
			return
		}
		if deps.Storage == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		var body uploadURLRequest
		if customErr := req.BindJSON(r, &body); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
		if body.FileName == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		ticket, customErr := deps.Storage.PresignUpload(r.Context(), body.FileName, body.FileType, body.FileSize)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
		resp.RespondSuccess(w, r, ticket)
	}
}

// HandleDownloadURL issues a presigned GET URL for an attachment key.
func HandleDownloadURL(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if requireIdentity(w, r) == nil {
			return
		}
		if deps.Storage == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		key := r.URL.Query().Get("key")
		if key == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		url, customErr := deps.Storage.PresignDownload(r.Context(), key)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
		resp.RespondSuccess(w, r, map[string]string{"url": url})
	}
}
