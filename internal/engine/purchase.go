package engine

// pendingPurchase - спекулятивно размещенная покупка, у которой еще нет
// серверного EntityID. Визуал уже стоит на скамейке, но в реестр юнитов
// не попадает, пока снапшот не принесет настоящий идентификатор.
type pendingPurchase struct {
	templateID string
	handle     VisualHandle
	bornCycle  int
}

// purchaseTracker хранит незавершенные покупки по слоту скамейки.
//
// Слот покупки подавлен на один цикл, поэтому сервер "догоняет" визуал
// не раньше второго снапшота: там покупка либо усыновляется (визуал
// переходит настоящему юниту), либо признается отклоненной и сметается.
type purchaseTracker struct {
	pending map[int]pendingPurchase // ключ - индекс слота скамейки
}

func newPurchaseTracker() *purchaseTracker {
	return &purchaseTracker{pending: make(map[int]pendingPurchase)}
}

// Add регистрирует покупку, размещенную в слоте скамейки.
func (t *purchaseTracker) Add(benchIndex int, templateID string, h VisualHandle, cycle int) {
	t.pending[benchIndex] = pendingPurchase{
		templateID: templateID,
		handle:     h,
		bornCycle:  cycle,
	}
}

// Adopt отдает визуал покупки настоящему юниту из снапшота.
// Совпадать должны и слот, и шаблон: чужой юнит в этом слоте означает,
// что сервер распорядился местом иначе.
func (t *purchaseTracker) Adopt(benchIndex int, templateID string) (VisualHandle, bool) {
	p, ok := t.pending[benchIndex]
	if !ok || p.templateID != templateID {
		return NilVisual, false
	}
	delete(t.pending, benchIndex)
	return p.handle, true
}

// Sweep уничтожает визуалы покупок, не усыновленных за два цикла:
// окно подавления истекло, сервер покупку не подтвердил.
func (t *purchaseTracker) Sweep(cycle int, sink VisualSink) int {
	swept := 0
	for idx, p := range t.pending {
		if cycle-p.bornCycle >= 2 {
			sink.DestroyVisual(p.handle)
			delete(t.pending, idx)
			swept++
		}
	}
	return swept
}

// Has проверяет, занят ли слот скамейки незавершенной покупкой.
func (t *purchaseTracker) Has(benchIndex int) bool {
	_, ok := t.pending[benchIndex]
	return ok
}

// Len возвращает число незавершенных покупок.
func (t *purchaseTracker) Len() int {
	return len(t.pending)
}
