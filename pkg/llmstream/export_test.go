package llmstream

var FromGeminiSeq = fromGeminiSeq
