package nutri

import "fmt"

// DefaultHistoryLimit is the number of journal records GetHistory returns
// when limit is not positive.
const DefaultHistoryLimit = 20

// GetHistory returns the most recent mutating commands, newest first.
func (s *NutriService) GetHistory(limit int) ([]*Operation, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	ops, err := s.store.ListOperations(limit)
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	return ops, nil
}
