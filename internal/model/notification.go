package model

// Notification 站内通知
type Notification struct {
	BaseModel
	UserID  string  `gorm:"size:36;not null;index" json:"user_id"`
	StoreID *string `gorm:"size:36;index" json:"store_id"`
	Title   string  `gorm:"size:255;not null" json:"title"`
	Message string  `gorm:"type:text" json:"message"`
	Link    string  `gorm:"size:512" json:"link"`
	IsRead  bool    `gorm:"not null;default:false" json:"is_read"`
}

func (Notification) TableName() string {
	return "notifications"
}

// AllModels 需要自动建表的模型
func AllModels() []interface{} {
	return []interface{}{
		&Store{}, &Employee{},
		&GenerationRun{}, &Shift{},
		&EmployeeBalance{}, &BalanceSettlement{},
		&AuditLog{}, &Notification{},
	}
}
