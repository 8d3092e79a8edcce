package models

import "gorm.io/gorm"

// AutoMigrate creates or updates every table the backend owns.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Account{},
		&Customer{},
		&Category{},
		&Service{},
		&StaffProfile{},
		&StaffSchedule{},
		&StaffTimeOff{},
		&DefaultSchedule{},
		&Product{},
		&ProductImage{},
		&TreatmentPlan{},
		&MediaFile{},
		&ReminderLog{},
	)
}
