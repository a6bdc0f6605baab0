package services

import (
	"github.com/Dosada05/ff-arena/models"
	"github.com/Dosada05/ff-arena/storage"
)

// Хелперы превращают ключи объектов в публичные URL перед отдачей клиенту.

func populateUserAvatarURL(u *models.User, uploader storage.FileUploader) {
	if u == nil || u.AvatarKey == nil || *u.AvatarKey == "" {
		return
	}
	url := uploader.GetPublicURL(*u.AvatarKey)
	u.AvatarURL = &url
}

func populateTournamentBannerURL(t *models.Tournament, uploader storage.FileUploader) {
	if t == nil || t.BannerKey == nil || *t.BannerKey == "" {
		return
	}
	url := uploader.GetPublicURL(*t.BannerKey)
	t.BannerURL = &url
}

func populateRegistrationAvatarURLs(registrations []models.TournamentRegistration, uploader storage.FileUploader) {
	for i := range registrations {
		populateUserAvatarURL(registrations[i].User, uploader)
	}
}
