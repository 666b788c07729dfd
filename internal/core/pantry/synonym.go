package pantry

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"pantry-resolver/internal/pkg/common"
)

// SynonymStore 同義詞的外部持久化。
// Put 必須在互斥存取下完成讀取、修改、寫回。
type SynonymStore interface {
	Load(ctx context.Context) (map[string]string, error)
	Put(ctx context.Context, name, id string) error
}

// AddSynonym 先寫入外部儲存，成功後才更新記憶體索引，兩者不會不一致
func AddSynonym(ctx context.Context, store SynonymStore, ix *Index, name, id string) error {
	key := Fold(name)
	id = strings.TrimSpace(id)
	if key == "" {
		return common.NewValidationError("synonym name is required")
	}
	if id == "" {
		return common.NewValidationError("pantry id is required")
	}

	if err := store.Put(ctx, key, id); err != nil {
		common.LogError("Failed to persist synonym",
			zap.String("name", key),
			zap.String("id", id),
			zap.Error(err),
		)
		return common.Wrap(common.ErrSynonymStore, err)
	}

	ix.AddSynonym(key, id)
	common.LogInfo("Synonym added", zap.String("name", key), zap.String("id", id))
	return nil
}

// LoadSynonyms 從外部儲存載入同義詞覆寫層
func LoadSynonyms(ctx context.Context, store SynonymStore, ix *Index) (int, error) {
	synonyms, err := store.Load(ctx)
	if err != nil {
		return 0, common.Wrap(common.ErrSynonymStore, err)
	}
	return ix.LoadSynonyms(synonyms), nil
}
