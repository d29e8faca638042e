package projection

import (
	"github.com/shoplink/legacymigrate/pkg/identity"
	"github.com/shoplink/legacymigrate/pkg/transform"
)

const generatedCodeLength = 8

func newCode() any { return transform.GenerateCode(generatedCodeLength) }

// Tables declares the projection of every legacy table, in dependency order:
// lookup tables before owning entities, owning entities before owned ones,
// relationship tables last. A pass must never run a table before the tables
// its foreign keys reference.
//
// Each Columns list is the exact column order of the legacy dump; the legacy
// exporter identified columns only by position, so drift shows up as a
// manifest length mismatch.
//
// Tables without a globally unique business key (shops, goods, and all
// relationship tables) carry the legacy integer ID in a legacy_ref column,
// which doubles as the natural key backing the idempotent re-run check.
// Dedupe keys must be unique across the whole table, not per owner: shop
// names and good titles repeat across merchants and shops.
var Tables = []*Table{
	{
		Kind:       identity.KindBank,
		LegacyName: "banks",
		LegacyPK:   "id",
		NaturalKey: "name",
		Columns:    []string{"id", "name", "icon", "create_time"},
		Fields: []Field{
			{Legacy: "name", Target: "name"},
			{Legacy: "icon", Target: "icon"},
			{Legacy: "create_time", Target: "created_at", Transform: transform.EpochToTimestamp},
		},
	},
	{
		Kind:       identity.KindUser,
		LegacyName: "users",
		LegacyPK:   "id",
		NaturalKey: "phone",
		Columns: []string{
			"id", "username", "phone", "password", "avatar", "bank_id",
			"bank_account", "balance", "is_locked", "create_time", "last_login_time",
		},
		Fields: []Field{
			{Legacy: "username", Target: "username"},
			{Legacy: "phone", Target: "phone", Transform: transform.ToString},
			{Legacy: "password", Target: "password"},
			{Legacy: "avatar", Target: "avatar"},
			{Legacy: "bank_id", Target: "bank_id", FKKind: identity.KindBank},
			{Legacy: "bank_account", Target: "bank_account", Transform: transform.ToString},
			{Legacy: "balance", Target: "balance"},
			{Legacy: "is_locked", Target: "locked", Transform: transform.IntToBool},
			{Target: "invite_code", Generate: newCode},
			{Legacy: "create_time", Target: "created_at", Transform: transform.EpochToTimestamp},
			{Legacy: "last_login_time", Target: "last_login_at", Transform: transform.EpochToTimestamp},
		},
	},
	{
		Kind:       identity.KindMerchant,
		LegacyName: "merchants",
		LegacyPK:   "id",
		NaturalKey: "phone",
		Columns: []string{
			"id", "username", "phone", "password", "score", "is_verified", "create_time",
		},
		Fields: []Field{
			{Legacy: "username", Target: "username"},
			{Legacy: "phone", Target: "phone", Transform: transform.ToString},
			{Legacy: "password", Target: "password"},
			{Legacy: "score", Target: "score"},
			{Legacy: "is_verified", Target: "verified", Transform: transform.IntToBool},
			{Target: "referral_code", Generate: newCode},
			{Legacy: "create_time", Target: "created_at", Transform: transform.EpochToTimestamp},
		},
	},
	{
		Kind:       identity.KindShop,
		LegacyName: "shops",
		LegacyPK:   "id",
		NaturalKey: "legacy_ref",
		Columns:    []string{"id", "merchant_id", "name", "platform", "url", "create_time"},
		Fields: []Field{
			// Shop names are only unique per merchant, so the legacy ID is
			// the dedupe key; a bare name would merge distinct shops.
			{Legacy: "id", Target: "legacy_ref", Transform: transform.ToString},
			{Legacy: "merchant_id", Target: "merchant_id", FKKind: identity.KindMerchant},
			{Legacy: "name", Target: "name"},
			{Legacy: "platform", Target: "platform", Transform: transform.ToString},
			{Legacy: "url", Target: "url"},
			{Legacy: "create_time", Target: "created_at", Transform: transform.EpochToTimestamp},
		},
	},
	{
		Kind:       identity.KindGood,
		LegacyName: "goods",
		LegacyPK:   "id",
		NaturalKey: "legacy_ref",
		Columns:    []string{"id", "shop_id", "title", "price", "image", "is_on_sale", "create_time"},
		Fields: []Field{
			// Titles repeat across shops; dedupe on the legacy ID.
			{Legacy: "id", Target: "legacy_ref", Transform: transform.ToString},
			{Legacy: "shop_id", Target: "shop_id", FKKind: identity.KindShop},
			{Legacy: "title", Target: "title"},
			{Legacy: "price", Target: "price"},
			{Legacy: "image", Target: "image_url"},
			{Legacy: "is_on_sale", Target: "on_sale", Transform: transform.IntToBool},
			{Legacy: "create_time", Target: "created_at", Transform: transform.EpochToTimestamp},
		},
	},
	{
		Kind:       identity.KindBuyerAccount,
		LegacyName: "buyer_accounts",
		LegacyPK:   "id",
		NaturalKey: "account_no",
		Columns:    []string{"id", "user_id", "account_no", "platform", "is_default", "create_time"},
		Fields: []Field{
			{Legacy: "user_id", Target: "user_id", FKKind: identity.KindUser},
			{Legacy: "account_no", Target: "account_no", Transform: transform.ToString},
			{Legacy: "platform", Target: "platform", Transform: transform.ToString},
			{Legacy: "is_default", Target: "is_default", Transform: transform.IntToBool},
			{Legacy: "create_time", Target: "created_at", Transform: transform.EpochToTimestamp},
		},
	},
	{
		Kind:       identity.KindTask,
		LegacyName: "tasks",
		LegacyPK:   "id",
		NaturalKey: "legacy_ref",
		Columns: []string{
			"id", "merchant_id", "shop_id", "good_id", "user_id",
			"status", "commission", "count", "create_time", "finish_time",
		},
		Fields: []Field{
			{Legacy: "id", Target: "legacy_ref", Transform: transform.ToString},
			{Legacy: "merchant_id", Target: "merchant_id", FKKind: identity.KindMerchant},
			{Legacy: "shop_id", Target: "shop_id", FKKind: identity.KindShop},
			{Legacy: "good_id", Target: "good_id", FKKind: identity.KindGood},
			{Legacy: "user_id", Target: "user_id", FKKind: identity.KindUser},
			{Legacy: "status", Target: "status", Transform: transform.ToString},
			{Legacy: "commission", Target: "commission"},
			{Legacy: "count", Target: "quantity"},
			{Legacy: "create_time", Target: "created_at", Transform: transform.EpochToTimestamp},
			{Legacy: "finish_time", Target: "finished_at", Transform: transform.EpochToTimestamp},
		},
	},
	{
		Kind:       identity.KindOrder,
		LegacyName: "orders",
		LegacyPK:   "id",
		NaturalKey: "legacy_ref",
		Columns: []string{
			"id", "task_id", "user_id", "buyer_account_id",
			"amount", "status", "is_paid", "create_time", "pay_time",
		},
		Fields: []Field{
			{Legacy: "id", Target: "legacy_ref", Transform: transform.ToString},
			{Legacy: "task_id", Target: "task_id", FKKind: identity.KindTask},
			{Legacy: "user_id", Target: "user_id", FKKind: identity.KindUser},
			{Legacy: "buyer_account_id", Target: "buyer_account_id", FKKind: identity.KindBuyerAccount},
			{Legacy: "amount", Target: "amount"},
			{Legacy: "status", Target: "status", Transform: transform.ToString},
			{Legacy: "is_paid", Target: "paid", Transform: transform.IntToBool},
			{Legacy: "create_time", Target: "created_at", Transform: transform.EpochToTimestamp},
			{Legacy: "pay_time", Target: "paid_at", Transform: transform.EpochToTimestamp},
		},
	},
	{
		Kind:       identity.KindMessage,
		LegacyName: "messages",
		LegacyPK:   "id",
		NaturalKey: "legacy_ref",
		Columns: []string{
			"id", "from_user_id", "to_user_id", "task_id", "content", "is_read", "create_time",
		},
		Fields: []Field{
			{Legacy: "id", Target: "legacy_ref", Transform: transform.ToString},
			{Legacy: "from_user_id", Target: "sender_id", FKKind: identity.KindUser},
			{Legacy: "to_user_id", Target: "recipient_id", FKKind: identity.KindUser},
			{Legacy: "task_id", Target: "task_id", FKKind: identity.KindTask},
			{Legacy: "content", Target: "content"},
			{Legacy: "is_read", Target: "read", Transform: transform.IntToBool},
			{Legacy: "create_time", Target: "created_at", Transform: transform.EpochToTimestamp},
		},
	},
}

// TableForKind returns the declared projection for a kind, or nil.
func TableForKind(kind identity.Kind) *Table {
	for _, t := range Tables {
		if t.Kind == kind {
			return t
		}
	}
	return nil
}
