package utils

import "math"

// DereferenceSeed は、int64のポインタを安全にデリファレンスします。
// ポインタがnilの場合は0を返します。
func DereferenceSeed(seed *int64) int64 {
	if seed == nil {
		return 0
	}
	return *seed
}

// SeedToPtrInt32 は *int64 のシードを SDK 用の *int32 に変換するのだ。
// int32 に収まらない値は math.MaxInt32 で剰余を取って範囲内に収めるのだ。
func SeedToPtrInt32(seed *int64) *int32 {
	if seed == nil {
		return nil
	}
	v := *seed
	if v < 0 {
		v = -v
	}
	if v > math.MaxInt32 {
		v %= math.MaxInt32
	}
	out := int32(v)
	return &out
}

// SeedToPtrInt64 は int32 を返す SDK の値を *int64 に戻すのだ。
func SeedToPtrInt64(seed *int32) *int64 {
	if seed == nil {
		return nil
	}
	v := int64(*seed)
	return &v
}

// Float64ToPtrFloat32 は *float64 を SDK 用の *float32 に変換します。
func Float64ToPtrFloat32(f *float64) *float32 {
	if f == nil {
		return nil
	}
	v := float32(*f)
	return &v
}
