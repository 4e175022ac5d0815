package core

import "testing"

func TestProjectBalance(t *testing.T) {
	t.Run("no activity reports initial balance", func(t *testing.T) {
		got := ProjectBalance(Money{Cents: 50000}, AccountActivity{})
		if got.Cents != 50000 {
			t.Errorf("expected 50000, got %d", got.Cents)
		}
	})

	t.Run("transfer fee debits the source on top of the amount", func(t *testing.T) {
		// 1000.00 initial, 200.00 transferred out with a 5.00 fee.
		got := ProjectBalance(Money{Cents: 100000}, AccountActivity{
			TransfersOutCents: 20000,
			TransferFeeCents:  500,
		})
		if got.Cents != 79500 {
			t.Errorf("expected 79500, got %d", got.Cents)
		}
	})

	t.Run("full projection", func(t *testing.T) {
		got := ProjectBalance(Money{Cents: 10000}, AccountActivity{
			IncomeCents:       250000,
			DebitCents:        80000,
			TransfersInCents:  20000,
			TransfersOutCents: 5000,
			TransferFeeCents:  100,
		})
		want := int64(10000 + 250000 - 80000 + 20000 - 5100)
		if got.Cents != want {
			t.Errorf("expected %d, got %d", want, got.Cents)
		}
	})

	t.Run("balance may go negative", func(t *testing.T) {
		got := ProjectBalance(Money{Cents: 1000}, AccountActivity{DebitCents: 5000})
		if got.Cents != -4000 {
			t.Errorf("expected -4000, got %d", got.Cents)
		}
	})
}

func TestDebitModes(t *testing.T) {
	narrow := NarrowDebit.DebitTypes()
	if len(narrow) != 1 || narrow[0] != EntryExpense {
		t.Errorf("narrow mode must count expenses only, got %v", narrow)
	}

	all := AllOutflow.DebitTypes()
	wantAll := map[EntryType]bool{
		EntryExpense:          true,
		EntryDebtPayment:      true,
		EntryGoalContribution: true,
		EntryLoanPayment:      true,
	}
	if len(all) != len(wantAll) {
		t.Fatalf("all-outflow mode: expected %d types, got %v", len(wantAll), all)
	}
	for _, typ := range all {
		if !wantAll[typ] {
			t.Errorf("unexpected type in all-outflow mode: %s", typ)
		}
	}
	// Income is never a debit in either mode.
	for _, typ := range all {
		if typ == EntryIncome {
			t.Error("income must never count as a debit")
		}
	}
}

func TestAggregateAdd(t *testing.T) {
	a := Aggregate{TotalCents: 100, Count: 2}
	b := Aggregate{TotalCents: 50, Count: 1}
	got := a.Add(b)
	if got.TotalCents != 150 || got.Count != 3 {
		t.Errorf("expected {150 3}, got %+v", got)
	}
}
