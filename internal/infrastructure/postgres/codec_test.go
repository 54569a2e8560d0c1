package postgres

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

func TestWhere_NumeraPlaceholdersEnOrden(t *testing.T) {
	var w where
	assert.Equal(t, "", w.String())

	w.add("kind = $%d", "receipt")
	w.add("created_at >= $%d", time.Unix(0, 0))
	limit := w.next(50)

	assert.Equal(t, " WHERE kind = $1 AND created_at >= $2", w.String())
	assert.Equal(t, "$3", limit)
	assert.Len(t, w.args, 3)
}

func TestDocumentCodec_DespachoConservaReservaEHistorial(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	d, err := entity.NewDelivery(entity.DocumentHeader{
		ID: "d-1", Number: "DEL-2026-001", WarehouseID: "WH-A", CreatedBy: "u-1", CreatedAt: now, UpdatedAt: now,
	}, "Cliente", nil, []entity.DeliveryLineInput{{ProductID: "P-1", OrderedQty: decimal.NewFromInt(4)}})
	require.NoError(t, err)

	_, err = d.Apply(entity.TransitionStartPicking, entity.TransitionInput{Actor: "u-1", At: now})
	require.NoError(t, err)
	qty := decimal.RequireFromString("2.5")
	_, err = d.Apply(entity.TransitionSavePicking, entity.TransitionInput{
		Lines: []entity.LineQuantity{{LineID: d.Lines[0].ID, Quantity: &qty}}, Actor: "u-1", At: now,
	})
	require.NoError(t, err)

	body, err := encodeDocument(d)
	require.NoError(t, err)
	got, err := decodeDocument(entity.KindDelivery, body)
	require.NoError(t, err)

	back, ok := got.(*entity.Delivery)
	require.True(t, ok)
	assert.Equal(t, entity.DeliveryPicking, back.Status)
	assert.True(t, back.Lines[0].PickedQty.Equal(qty))
	assert.Len(t, back.History, 2)
	assert.True(t, back.OpenReservation(entity.StockKey{ProductID: "P-1", LocationID: "WH-A"}).Equal(qty))
}

func TestDocumentCodec_TipoDesconocido(t *testing.T) {
	_, err := decodeDocument("invoice", []byte(`{}`))
	assert.ErrorContains(t, err, "invoice")
}
