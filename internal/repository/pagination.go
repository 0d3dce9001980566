package repository

import "gorm.io/gorm"

// Page narrows list queries to a window of results.
type Page struct {
	Page     int
	PageSize int
}

func (p Page) apply(query *gorm.DB) *gorm.DB {
	if p.PageSize <= 0 {
		return query
	}
	page := p.Page
	if page <= 0 {
		page = 1
	}
	return query.Limit(p.PageSize).Offset((page - 1) * p.PageSize)
}

func countAndFind[T any](query *gorm.DB, page Page, order string, out *[]T) (int64, error) {
	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, err
	}
	if err := page.apply(query).Order(order).Find(out).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func deleteScoped(tx *gorm.DB, model interface{}, tenantID, id string) error {
	result := tx.Where("tenant_id = ? AND id = ?", tenantID, id).Delete(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
