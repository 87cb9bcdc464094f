package usecase

// NewAnalysisCache is exported for testing
var NewAnalysisCache = newAnalysisCache

// CacheKey is exported for testing
var CacheKey = cacheKey

// AnalysisCache is exported for testing
type AnalysisCache = analysisCache
