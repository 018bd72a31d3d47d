package pets

import "context"

// OwnerOf expone el ownerUserID de una mascota.
// Lo usan favorites y conversations sin importar el modelo completo.
func (s *Service) OwnerOf(ctx context.Context, petID string) (string, error) {
	p, err := s.GetByID(ctx, petID)
	if err != nil {
		return "", err
	}
	return p.OwnerUserID, nil
}
