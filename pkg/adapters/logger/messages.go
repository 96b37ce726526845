package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Pipeline level messages (info)
		"Pipeline initialized: %dx%d processing, %d workers": "パイプラインを初期化しました: 処理解像度 %dx%d, ワーカー %d",
		"Frame loop started at %g Hz":                        "フレームループを %g Hz で開始しました",
		"Pipeline stopped":                                   "パイプラインを停止しました",
		"Interrupted, shutting down...":                      "中断されました。シャットダウン中...",

		// CLI
		"Watching %s for barcodes...":   "%s のバーコードを監視中...",
		"Decoding %s...":                "%s をデコード中...",
		"Detected %s code: %s":          "%s コードを検出: %s",
		"No barcode found":              "バーコードが見つかりませんでした",
		"Overlay saved to %s":           "オーバーレイを %s に保存しました",
		"Result sink failed: %s":        "結果シンクが失敗しました: %s",
		"Pool adjusted to %d workers":   "プールを %d ワーカーに調整しました",
		"All workers busy, frame dropped": "全ワーカーがビジーのためフレームを破棄しました",
	})
}
