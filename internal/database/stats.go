package database

import "gorm.io/gorm"

type Stats struct {
	Drafts    int64
	Submitted int64 // includes accepted
	Accepted  int64
	Images    int64
	ImageSize int64
	Links     int64
}

// LoadStats counts records by lifecycle state.
func LoadStats(db *gorm.DB) (Stats, error) {
	var s Stats

	counts := []struct {
		dst   *int64
		query *gorm.DB
	}{
		{&s.Drafts, db.Model(&Submission{}).Where("submitted_at IS NULL")},
		{&s.Submitted, db.Model(&Submission{}).Where("submitted_at IS NOT NULL")},
		{&s.Accepted, db.Model(&Submission{}).Where("accepted_at IS NOT NULL")},
		{&s.Images, db.Model(&Image{})},
		{&s.Links, db.Model(&Link{})},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dst).Error; err != nil {
			return s, err
		}
	}

	// COALESCE handles the empty table case (NULL sum)
	row := db.Model(&Image{}).Select("COALESCE(SUM(size), 0)").Row()
	if err := row.Scan(&s.ImageSize); err != nil {
		return s, err
	}
	return s, nil
}
