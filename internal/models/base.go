package models

import "github.com/google/uuid"

// ensureID primary key boş ise yeni bir UUID atar.
// ID'ler veritabanı default'una bırakılmıyor, testlerde kullanılan SQLite'ta gen_random_uuid() yok.
func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
