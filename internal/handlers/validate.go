package handlers

import (
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"unicode/utf8"

	"vivabem/internal/models"
	"vivabem/internal/slug"
)

// Length limits, matching the column sizes of the schema.
const (
	maxTitleLen     = 255
	maxSlugLen      = 255
	maxCategoryLen  = 100
	maxReadTimeLen  = 20
	maxDurationLen  = 20
	maxYoutubeIDLen = 50
	maxEmailLen     = 320
	maxNameLen      = 255
	maxURLLen       = 512
	maxPages        = 100000
	maxListLimit    = 100
)

// Validation messages shown by the admin forms.
const (
	msgTitleRequired       = "Título é obrigatório"
	msgSlugRequired        = "Slug é obrigatório"
	msgSlugInvalid         = "Slug deve conter apenas letras minúsculas, números e hífens"
	msgExcerptRequired     = "Resumo é obrigatório"
	msgImageInvalid        = "URL da imagem inválida"
	msgCategoryRequired    = "Categoria é obrigatória"
	msgReadTimeRequired    = "Tempo de leitura é obrigatório"
	msgThumbnailInvalid    = "URL da thumbnail inválida"
	msgDurationRequired    = "Duração é obrigatória"
	msgDescriptionRequired = "Descrição é obrigatória"
	msgPagesRequired       = "Número de páginas é obrigatório"
	msgPagesTooMany        = "Máximo de 100000 páginas"
	msgDownloadURLInvalid  = "URL de download inválida"
	msgEmailInvalid        = "E-mail inválido"
	msgIDInvalid           = "ID inválido"
	msgLimitInvalid        = "Limite deve estar entre 1 e 100"
	msgFilenameRequired    = "Nome do arquivo é obrigatório"
	msgContentTypeRequired = "Tipo de arquivo é obrigatório"
)

// validator collects issues; err returns them as one invalid-params error.
type validator struct {
	issues []Issue
}

func (v *validator) add(field, message string) {
	v.issues = append(v.issues, Issue{Field: field, Message: message})
}

func (v *validator) err() error {
	if len(v.issues) == 0 {
		return nil
	}
	return invalidParams(v.issues...)
}

// required checks that value is not blank and at most max runes long.
func (v *validator) required(field, value, message string, max int) {
	if strings.TrimSpace(value) == "" {
		v.add(field, message)
		return
	}
	v.maxLen(field, value, max)
}

func (v *validator) maxLen(field, value string, max int) {
	if max > 0 && utf8.RuneCountInString(value) > max {
		v.add(field, fmt.Sprintf("Máximo de %d caracteres", max))
	}
}

// url checks for an absolute http(s) URL that fits its column.
func (v *validator) url(field, value, message string) {
	if !isHTTPURL(value) {
		v.add(field, message)
		return
	}
	v.maxLen(field, value, maxURLLen)
}

// pages checks an ebook page count against the column range.
func (v *validator) pages(n int) {
	switch {
	case n < 1:
		v.add("pages", msgPagesRequired)
	case n > maxPages:
		v.add("pages", msgPagesTooMany)
	}
}

func (v *validator) slug(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.add(field, msgSlugRequired)
		return
	}
	if !slug.Valid(value) {
		v.add(field, msgSlugInvalid)
		return
	}
	v.maxLen(field, value, maxSlugLen)
}

func (v *validator) id(id int64) {
	if id < 1 {
		v.add("id", msgIDInvalid)
	}
}

// limit accepts an absent limit or one in 1..maxListLimit.
func (v *validator) limit(limit *int) {
	if limit != nil && (*limit < 1 || *limit > maxListLimit) {
		v.add("limit", msgLimitInvalid)
	}
}

// isHTTPURL reports whether s is an absolute http(s) URL with a host.
func isHTTPURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// isEmail reports whether s is a bare address such as "ana@exemplo.com".
func isEmail(s string) bool {
	if s == "" || utf8.RuneCountInString(s) > maxEmailLen {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	return addr.Address == s && addr.Name == ""
}

// trimPtr trims a non-nil string in place.
func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}

// emptyToNil turns a pointer to a blank string into nil.
func emptyToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

// --- Posts ---

func validatePostInput(in *models.PostInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Slug = strings.TrimSpace(in.Slug)
	in.Excerpt = strings.TrimSpace(in.Excerpt)
	in.Image = strings.TrimSpace(in.Image)
	in.Category = strings.TrimSpace(in.Category)
	in.ReadTime = strings.TrimSpace(in.ReadTime)
	if in.Content != nil && strings.TrimSpace(*in.Content) == "" {
		in.Content = nil
	}

	var v validator
	v.required("title", in.Title, msgTitleRequired, maxTitleLen)
	v.slug("slug", in.Slug)
	v.required("excerpt", in.Excerpt, msgExcerptRequired, 0)
	v.url("image", in.Image, msgImageInvalid)
	v.required("category", in.Category, msgCategoryRequired, maxCategoryLen)
	v.required("readTime", in.ReadTime, msgReadTimeRequired, maxReadTimeLen)
	return v.err()
}

// validatePostPatch applies the create rules to the fields that are present.
func validatePostPatch(p *models.PostPatch) error {
	trimPtr(p.Title)
	trimPtr(p.Slug)
	trimPtr(p.Excerpt)
	trimPtr(p.Image)
	trimPtr(p.Category)
	trimPtr(p.ReadTime)

	var v validator
	if p.Title != nil {
		v.required("title", *p.Title, msgTitleRequired, maxTitleLen)
	}
	if p.Slug != nil {
		v.slug("slug", *p.Slug)
	}
	if p.Excerpt != nil {
		v.required("excerpt", *p.Excerpt, msgExcerptRequired, 0)
	}
	if p.Image != nil {
		v.url("image", *p.Image, msgImageInvalid)
	}
	if p.Category != nil {
		v.required("category", *p.Category, msgCategoryRequired, maxCategoryLen)
	}
	if p.ReadTime != nil {
		v.required("readTime", *p.ReadTime, msgReadTimeRequired, maxReadTimeLen)
	}
	return v.err()
}

// --- Videos ---

func validateVideoInput(in *models.VideoInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Thumbnail = strings.TrimSpace(in.Thumbnail)
	in.Duration = strings.TrimSpace(in.Duration)
	in.YoutubeID = emptyToNil(in.YoutubeID)
	in.Description = emptyToNil(in.Description)

	var v validator
	if in.YoutubeID != nil {
		v.maxLen("youtubeId", *in.YoutubeID, maxYoutubeIDLen)
	}
	v.required("title", in.Title, msgTitleRequired, maxTitleLen)
	v.url("thumbnail", in.Thumbnail, msgThumbnailInvalid)
	v.required("duration", in.Duration, msgDurationRequired, maxDurationLen)
	return v.err()
}

func validateVideoPatch(p *models.VideoPatch) error {
	trimPtr(p.YoutubeID)
	trimPtr(p.Title)
	trimPtr(p.Description)
	trimPtr(p.Thumbnail)
	trimPtr(p.Duration)

	var v validator
	if p.YoutubeID != nil {
		v.maxLen("youtubeId", *p.YoutubeID, maxYoutubeIDLen)
	}
	if p.Title != nil {
		v.required("title", *p.Title, msgTitleRequired, maxTitleLen)
	}
	if p.Thumbnail != nil {
		v.url("thumbnail", *p.Thumbnail, msgThumbnailInvalid)
	}
	if p.Duration != nil {
		v.required("duration", *p.Duration, msgDurationRequired, maxDurationLen)
	}
	return v.err()
}

// --- Ebooks ---

func validateEbookInput(in *models.EbookInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Image = strings.TrimSpace(in.Image)
	in.DownloadURL = emptyToNil(in.DownloadURL)

	var v validator
	v.required("title", in.Title, msgTitleRequired, maxTitleLen)
	v.required("description", in.Description, msgDescriptionRequired, 0)
	v.url("image", in.Image, msgImageInvalid)
	if in.DownloadURL != nil {
		v.url("downloadUrl", *in.DownloadURL, msgDownloadURLInvalid)
	}
	v.pages(in.Pages)
	return v.err()
}

func validateEbookPatch(p *models.EbookPatch) error {
	trimPtr(p.Title)
	trimPtr(p.Description)
	trimPtr(p.Image)
	trimPtr(p.DownloadURL)

	var v validator
	if p.Title != nil {
		v.required("title", *p.Title, msgTitleRequired, maxTitleLen)
	}
	if p.Description != nil {
		v.required("description", *p.Description, msgDescriptionRequired, 0)
	}
	if p.Image != nil {
		v.url("image", *p.Image, msgImageInvalid)
	}
	if p.DownloadURL != nil && *p.DownloadURL != "" {
		v.url("downloadUrl", *p.DownloadURL, msgDownloadURLInvalid)
	}
	if p.Pages != nil {
		v.pages(*p.Pages)
	}
	return v.err()
}

// --- Newsletter ---

func validateSubscribe(in *subscribeParams) error {
	in.Email = strings.TrimSpace(in.Email)
	in.Name = emptyToNil(in.Name)

	var v validator
	if !isEmail(in.Email) {
		v.add("email", msgEmailInvalid)
	}
	if in.Name != nil {
		v.maxLen("name", *in.Name, maxNameLen)
	}
	return v.err()
}
