package animals

// Política de fotos del sync:
// - las fotos manuales sobreviven a todos los syncs, en su orden;
// - una foto del proveedor borrada por un usuario (tombstone) no vuelve;
// - las fotos del proveedor se reemplazan completas en cada sync.

// FilterDeletable quita las fotos cuya URL tiene tombstone.
func FilterDeletable(photos []Photo, tombstones []Tombstone) []Photo {
	out := make([]Photo, 0, len(photos))
	if len(tombstones) == 0 {
		return append(out, photos...)
	}

	deleted := make(map[string]struct{}, len(tombstones))
	for _, t := range tombstones {
		deleted[t.URL] = struct{}{}
	}

	for _, p := range photos {
		if _, ok := deleted[p.URL]; ok {
			continue
		}
		out = append(out, p)
	}
	return out
}

// MergeForUpdate devuelve manual(existing) ++ FilterDeletable(incoming).
// Las fotos del proveedor ya guardadas se descartan; si una entrante coincide
// en source+url con una anterior, conserva su id y timestamp.
func MergeForUpdate(existing, incoming []Photo, tombstones []Tombstone) []Photo {
	manual := make([]Photo, 0, len(existing))
	previous := make(map[string]Photo, len(existing))
	for _, p := range existing {
		if p.IsManual() {
			manual = append(manual, p)
			continue
		}
		previous[photoKey(p)] = p
	}

	filtered := FilterDeletable(incoming, tombstones)

	out := make([]Photo, 0, len(manual)+len(filtered))
	out = append(out, manual...)
	for _, p := range filtered {
		if old, ok := previous[photoKey(p)]; ok {
			p.ID = old.ID
			p.Timestamp = old.Timestamp
		}
		out = append(out, p)
	}
	return out
}

// PrimaryOnly deja sólo la primera foto (la de portada).
func PrimaryOnly(photos []Photo) []Photo {
	if len(photos) <= 1 {
		return photos
	}
	return photos[:1]
}

func photoKey(p Photo) string {
	return p.Source + "\x00" + p.URL
}
