package db

// Tag 定义了标签模型
type Tag struct {
	ID      string   `gorm:"primaryKey"`
	Title   string   `gorm:"not null"`
	Slug    string   `gorm:"index"`
	Records []Record `gorm:"many2many:record_tags;"`
}

// Typeface 定义了字体模型
type Typeface struct {
	ID      string `gorm:"primaryKey"`
	Title   string `gorm:"not null"`
	Slug    string `gorm:"index"`
	Foundry string
	Records []Record `gorm:"many2many:record_typefaces;"`
}
