package postgres

import (
	"encoding/json"
	"fmt"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// encodeDocument serializa la variante completa (cabecera, líneas, historial) para la columna body.
func encodeDocument(doc entity.Document) ([]byte, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document %s: %w", doc.Header().Number, err)
	}
	return body, nil
}

// decodeDocument reconstruye la variante indicada por kind.
func decodeDocument(kind entity.DocumentKind, body []byte) (entity.Document, error) {
	var doc entity.Document
	switch kind {
	case entity.KindReceipt:
		doc = &entity.Receipt{}
	case entity.KindDelivery:
		doc = &entity.Delivery{}
	case entity.KindTransfer:
		doc = &entity.Transfer{}
	case entity.KindAdjustment:
		doc = &entity.Adjustment{}
	default:
		return nil, fmt.Errorf("decode document: tipo %q desconocido", kind)
	}
	if err := json.Unmarshal(body, doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}
	return doc, nil
}
